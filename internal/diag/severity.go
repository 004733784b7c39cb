// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diag

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	// SeverityNone marks an extraction result with no severity.
	// Candidates carrying it are dropped by the parser and never reported.
	SeverityNone Severity = iota

	// SeverityInfo represents informational/style issues.
	SeverityInfo

	// SeverityWarning represents issues worth noting.
	SeverityWarning

	// SeverityError represents real defects.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a severity string from checker output.
//
// Description:
//
//	Maps the severity vocabulary of common checkers onto our levels.
//	Unknown values default to SeverityWarning; checkers frequently omit
//	or invent severity labels and a surprising label should not silence
//	the diagnostic.
//
// Inputs:
//
//	s - Severity string (e.g., "error", "warning", "note")
//
// Outputs:
//
//	Severity - The parsed severity level
func SeverityFromString(s string) Severity {
	switch s {
	case "error", "err", "fatal", "critical":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "style", "hint":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// ParseSeverity parses a severity string from configuration.
//
// Description:
//
//	Unlike SeverityFromString, configuration may express "this match is
//	not a diagnostic" explicitly: an empty string or "none" yields
//	SeverityNone, which causes matching candidates to be discarded.
//
// Inputs:
//
//	s - Configured severity value
//
// Outputs:
//
//	Severity - The parsed severity level
func ParseSeverity(s string) Severity {
	if s == "" || s == "none" {
		return SeverityNone
	}
	return SeverityFromString(s)
}
