// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package checker

import "errors"

// Sentinel errors for checker configuration.
var (
	// ErrInvalidConfig indicates a Config is missing required fields.
	ErrInvalidConfig = errors.New("invalid checker config")

	// ErrEmptyCommand indicates a command template with no argv entries.
	ErrEmptyCommand = errors.New("empty checker command")

	// ErrUnknownChecker indicates no config is registered under a name.
	ErrUnknownChecker = errors.New("unknown checker")

	// ErrDuplicateChecker indicates a name is already registered.
	ErrDuplicateChecker = errors.New("checker already registered")
)
