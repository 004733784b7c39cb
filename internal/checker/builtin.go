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
	"regexp"
	"strconv"
	"time"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// =============================================================================
// BUILT-IN CHECKER CONFIGS
// =============================================================================

// NewShellcheckConfig returns a config for shellcheck over stdin.
//
// Description:
//
//	shellcheck -f gcc emits one "-:line:col: level: message [SCnnnn]"
//	line per finding. The "-" argument makes it read the script from
//	stdin, so pipe mode needs no temp file.
func NewShellcheckConfig() *Config {
	pattern := regexp.MustCompile(`(?m)^.*?:(\d+):(\d+): (error|warning|note): (.*?)(?: \[(SC\d+)\])?$`)
	return &Config{
		Name:      "shellcheck",
		Command:   []string{"shellcheck", "-f", "gcc", "-"},
		InputMode: InputPipe,
		Pattern:   pattern,
		Extract: func(m Match, doc *document.Document) Candidate {
			start, end := doc.LineColRange(atoi(m.Group(1)), atoi(m.Group(2)))
			return Candidate{
				Start:    start,
				End:      end,
				Severity: diag.SeverityFromString(m.Group(3)),
				Message:  m.Group(4),
				Rule:     m.Group(5),
			}
		},
		Timeout: 10 * time.Second,
		Enabled: true,
	}
}

// NewPyflakesConfig returns a config for pyflakes over a temp file.
//
// Description:
//
//	pyflakes prints "path:line:col: message" (the column is absent in
//	older releases). It has no severity vocabulary; everything it
//	reports is a genuine defect, so candidates are errors.
func NewPyflakesConfig() *Config {
	pattern := regexp.MustCompile(`(?m)^.*?:(\d+):(?:(\d+):)? (.*)$`)
	return &Config{
		Name:      "pyflakes",
		Command:   []string{"pyflakes", FilePlaceholder},
		InputMode: InputFile,
		Pattern:   pattern,
		Extract: func(m Match, doc *document.Document) Candidate {
			start, end := doc.LineColRange(atoi(m.Group(1)), atoi(m.Group(2)))
			return Candidate{
				Start:    start,
				End:      end,
				Severity: diag.SeverityError,
				Message:  m.Group(3),
			}
		},
		Timeout: 10 * time.Second,
		Enabled: true,
	}
}

// NewRubyConfig returns a config for ruby -wc syntax checking over stdin.
//
// Description:
//
//	ruby -wc parses without executing. Warnings look like
//	"-:line: warning: message"; syntax errors drop the level part.
func NewRubyConfig() *Config {
	pattern := regexp.MustCompile(`(?m)^-:(\d+): (?:(warning): )?(.*)$`)
	return &Config{
		Name:      "ruby",
		Command:   []string{"ruby", "-wc", "-"},
		InputMode: InputPipe,
		Pattern:   pattern,
		Extract: func(m Match, doc *document.Document) Candidate {
			sev := diag.SeverityError
			if m.Group(2) == "warning" {
				sev = diag.SeverityWarning
			}
			start, end := doc.LineRange(atoi(m.Group(1)))
			return Candidate{
				Start:    start,
				End:      end,
				Severity: sev,
				Message:  m.Group(3),
			}
		},
		Timeout: 10 * time.Second,
		Enabled: true,
	}
}

// DefaultRegistry returns a registry preloaded with the built-in configs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Registration of the built-ins cannot fail; they are validated by tests.
	_ = r.Register(NewShellcheckConfig())
	_ = r.Register(NewPyflakesConfig())
	_ = r.Register(NewRubyConfig())
	return r
}

// atoi parses a decimal capture group, returning 0 for absent groups.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
