// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package job supervises asynchronous checker runs per document.
//
// # Lifecycle
//
// One job is one run of one checker against one document snapshot. Jobs
// are keyed by (document ID, checker name); launching a job for a key
// atomically supersedes whatever job was registered there before. The
// superseded process receives a best-effort termination request, but that
// is an optimization, not the cancellation mechanism: whenever its exit
// handler eventually fires, the handler looks up the registry and finds
// itself obsolete. That currency check is the authoritative cancellation
// signal.
//
//	launch ──► preflight ──► temp file (file mode) ──► register (supersede)
//	        ──► start process ──► pipe snapshot (pipe mode) ──► return
//
//	process exit ──► currency check ──► parse ──► report   (current)
//	                                └──► discard           (obsolete)
//	                 cleanup runs on both paths, exactly once
//
// # Concurrency
//
// The Registry is the only shared mutable state across job lifecycles;
// every access is serialized by its mutex. Exit handlers run on their own
// goroutines, concurrently with new launches, and must read currency from
// the registry at handler time - never from a value captured earlier.
//
// # No timeout by default
//
// A checker that never exits stays current until the next launch for its
// key terminates it. Config.Timeout arms a kill timer for deployments
// that want a bound.
//
// # Thread Safety
//
// All exported types are safe for concurrent use.
package job
