// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package job

import "errors"

// Sentinel errors for job supervision.
var (
	// ErrNilContext indicates a nil context was passed.
	ErrNilContext = errors.New("ctx must not be nil")

	// ErrNilDocument indicates a nil document was passed.
	ErrNilDocument = errors.New("document must not be nil")

	// ErrPreflight indicates a checker's pre-flight validation failed.
	// The checker is disabled for that invocation; no process was
	// started and no temp files were left behind.
	ErrPreflight = errors.New("checker preflight failed")

	// ErrStartFailed indicates the checker process could not be started
	// (e.g., executable not found at spawn time).
	ErrStartFailed = errors.New("checker process start failed")

	// ErrNoStdin indicates a write to a process started without a stdin
	// pipe.
	ErrNoStdin = errors.New("process has no stdin pipe")
)
