// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package checker describes external checkers: how to invoke them, how to
// feed them document content, and how to turn their output into
// diagnostics.
//
// # Configuration model
//
// A Config is built once by the integration author and treated as
// immutable. It bundles:
//
//   - a command template ({file} expands to the input path per job)
//   - an input mode (pipe the snapshot to stdin, or write a temp file)
//   - a matcher regexp applied to the checker's combined output
//   - an extraction function mapping one match to a diagnostic candidate
//   - an optional preflight check run before any process or file exists
//
// This replaces per-checker generated integration functions with plain
// configuration: registering a Config with a Registry is all an author
// does. A preflight failure disables the checker for that invocation and
// is indistinguishable, from the caller's perspective, from the checker
// being absent.
//
// # Built-in checkers
//
// DefaultRegistry ships configs for a few widely installed checkers with
// line-oriented (GCC-style) output: shellcheck, pyflakes, and ruby -wc.
// They are examples as much as defaults; most deployments load their own
// set from YAML via the config package.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Config values must be treated as
// immutable after registration.
package checker
