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

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// =============================================================================
// INPUT MODE
// =============================================================================

// InputMode selects how document content reaches the checker process.
type InputMode int

const (
	// InputPipe streams the snapshot to the process's stdin, then closes
	// it to signal end-of-input.
	InputPipe InputMode = iota

	// InputFile writes the snapshot to a file in a fresh temporary
	// directory and exposes that path to the command template.
	InputFile
)

// String returns the string representation of the input mode.
func (m InputMode) String() string {
	switch m {
	case InputPipe:
		return "pipe"
	case InputFile:
		return "file"
	default:
		return "unknown"
	}
}

// ParseInputMode parses an input mode string.
func ParseInputMode(s string) (InputMode, error) {
	switch s {
	case "pipe":
		return InputPipe, nil
	case "file":
		return InputFile, nil
	default:
		return InputPipe, fmt.Errorf("%w: input mode %q", ErrInvalidConfig, s)
	}
}

// =============================================================================
// MATCH AND EXTRACTION
// =============================================================================

// Match is one hit of a checker's output matcher.
type Match struct {
	// Start and End are byte offsets of the match within the raw output.
	Start, End int

	// Groups holds the matched text of each capture group.
	// Groups[0] is the full match; unmatched groups are empty strings.
	Groups []string
}

// Group returns the text of capture group i, or "" if out of range.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Candidate is the result of extracting one match.
//
// A candidate with SeverityNone is discarded by the parser; this is the
// mechanism for matcher hits that turn out not to be diagnostics.
type Candidate struct {
	// Start and End are byte offsets within the document.
	Start, End int

	// Severity classifies the issue. SeverityNone drops the candidate.
	Severity diag.Severity

	// Message is the issue text.
	Message string

	// Rule is an optional checker-specific rule identifier.
	Rule string
}

// ExtractFunc maps one matcher hit to a diagnostic candidate.
//
// Description:
//
//	Receives the match's capture groups and the document the job ran
//	against. The document is a snapshot; implementations typically use
//	LineRange/LineColRange to convert line-oriented checker output into
//	byte offsets. Must not retain the document past the call.
type ExtractFunc func(m Match, doc *document.Document) Candidate

// PreflightFunc validates that a checker can run against a document.
//
// Description:
//
//	Runs before any process is spawned or temp file written. Returning a
//	non-nil error aborts the launch: the error propagates synchronously
//	to the caller and the checker behaves as if it were absent for that
//	invocation.
type PreflightFunc func(ctx context.Context, doc *document.Document) error

// =============================================================================
// CHECKER CONFIG
// =============================================================================

// FilePlaceholder in a command template expands to the input file path.
const FilePlaceholder = "{file}"

// Config describes one external checker.
//
// Thread Safety: Treat as immutable after creation.
type Config struct {
	// Name identifies the checker. Part of the job registry key.
	Name string

	// Command is the argv template. Occurrences of {file} expand to the
	// input path: the temp file in file mode, the document's own path
	// (possibly empty) in pipe mode.
	Command []string

	// InputMode selects pipe or file input.
	InputMode InputMode

	// Pattern matches one diagnostic in the checker's combined output.
	Pattern *regexp.Regexp

	// Extract converts one Pattern match into a candidate.
	Extract ExtractFunc

	// Preflight optionally validates a launch before any resource is
	// created. Nil means no pre-flight check.
	Preflight PreflightFunc

	// Timeout kills the process after this duration. Zero means no
	// timeout: a hung checker stays current until superseded.
	Timeout time.Duration

	// Enabled gates the checker in CheckAll sweeps. Disabled configs can
	// still be run explicitly by name.
	Enabled bool
}

// Validate reports whether the config is usable.
//
// Outputs:
//
//	error - Non-nil if a required field is missing, wrapping
//	ErrInvalidConfig or ErrEmptyCommand.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if len(c.Command) == 0 || c.Command[0] == "" {
		return fmt.Errorf("%w: %s", ErrEmptyCommand, c.Name)
	}
	if c.Pattern == nil {
		return fmt.Errorf("%w: %s: pattern is required", ErrInvalidConfig, c.Name)
	}
	if c.Extract == nil {
		return fmt.Errorf("%w: %s: extract function is required", ErrInvalidConfig, c.Name)
	}
	return nil
}

// ExpandCommand evaluates the command template into a concrete argv.
//
// Inputs:
//
//	inputPath - Path substituted for {file}. The temp file path in file
//	mode; the document's associated path in pipe mode.
//
// Outputs:
//
//	[]string - The argv to execute. Always a fresh slice.
//	error - Non-nil if the template is empty.
func (c *Config) ExpandCommand(inputPath string) ([]string, error) {
	if len(c.Command) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCommand, c.Name)
	}
	argv := make([]string, len(c.Command))
	for i, arg := range c.Command {
		argv[i] = strings.ReplaceAll(arg, FilePlaceholder, inputPath)
	}
	return argv, nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Command = make([]string, len(c.Command))
	copy(clone.Command, c.Command)
	return &clone
}
