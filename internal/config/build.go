// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/checkd/internal/checker"
	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// =============================================================================
// SPEC COMPILATION
// =============================================================================

// Build compiles a YAML checker spec into a runnable checker config.
//
// Description:
//
//	Compiles the pattern and closes a generic extraction function over
//	the group indexes: line/column map the match onto the document,
//	the severity group is translated through SeverityMap, and matches
//	that resolve to no severity are dropped by the scanner. When no
//	line group is configured the diagnostic covers the raw match span.
//
// Outputs:
//
//	*checker.Config - The runnable config.
//	error - Non-nil if the mode, pattern, or group indexes are invalid.
func (s CheckerSpec) Build() (*checker.Config, error) {
	mode, err := checker.ParseInputMode(s.InputMode)
	if err != nil {
		return nil, fmt.Errorf("checker %q: %w", s.Name, err)
	}

	pattern, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("checker %q: invalid pattern: %w", s.Name, err)
	}

	groups := pattern.NumSubexp()
	for _, g := range []int{s.Groups.Line, s.Groups.Column, s.Groups.Severity, s.Groups.Message, s.Groups.Rule} {
		if g > groups {
			return nil, fmt.Errorf("checker %q: group %d exceeds the pattern's %d capture groups",
				s.Name, g, groups)
		}
	}

	cfg := &checker.Config{
		Name:      s.Name,
		Command:   append([]string(nil), s.Command...),
		InputMode: mode,
		Pattern:   pattern,
		Extract:   s.extractFunc(),
		Timeout:   s.Timeout(),
		Enabled:   s.Enabled,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// extractFunc builds the candidate extraction closure for this spec.
func (s CheckerSpec) extractFunc() checker.ExtractFunc {
	fixed := diag.ParseSeverity(s.Severity)
	if s.Groups.Severity == 0 && s.Severity == "" {
		// A spec with neither a severity group nor a fixed severity
		// still produces diagnostics; default them to errors.
		fixed = diag.SeverityError
	}

	return func(m checker.Match, doc *document.Document) checker.Candidate {
		c := checker.Candidate{
			Start:    m.Start,
			End:      m.End,
			Severity: fixed,
			Message:  m.Group(0),
		}

		if s.Groups.Severity > 0 {
			c.Severity = s.mapSeverity(m.Group(s.Groups.Severity))
		}
		if s.Groups.Message > 0 {
			c.Message = m.Group(s.Groups.Message)
		}
		if s.Groups.Rule > 0 {
			c.Rule = m.Group(s.Groups.Rule)
		}

		if s.Groups.Line > 0 {
			line, err := strconv.Atoi(m.Group(s.Groups.Line))
			if err != nil {
				return checker.Candidate{Severity: diag.SeverityNone}
			}
			col := 0
			if s.Groups.Column > 0 {
				// The column group may legitimately be empty (some
				// checkers omit it); that falls through to a full-line
				// span.
				col, _ = strconv.Atoi(m.Group(s.Groups.Column))
			}
			if col > 0 {
				c.Start, c.End = doc.LineColRange(line, col)
			} else {
				c.Start, c.End = doc.LineRange(line)
			}
		}

		return c
	}
}

// mapSeverity translates a captured severity token.
//
// An explicit severity_map is authoritative: tokens it maps to "none"
// and tokens it does not mention at all both drop the match. Without a
// map the token is interpreted directly.
func (s CheckerSpec) mapSeverity(token string) diag.Severity {
	token = strings.ToLower(strings.TrimSpace(token))
	if len(s.SeverityMap) == 0 {
		return diag.ParseSeverity(token)
	}
	mapped, ok := s.SeverityMap[token]
	if !ok {
		return diag.SeverityNone
	}
	return diag.ParseSeverity(mapped)
}

// =============================================================================
// REGISTRY ASSEMBLY
// =============================================================================

// BuildRegistry compiles every checker spec in cfg into a registry.
//
// Description:
//
//	Specs compile in file order; a duplicate name or invalid spec fails
//	the whole load so a broken config never runs half its checkers.
//
// Outputs:
//
//	*checker.Registry - Registry holding one config per spec.
//	error - Non-nil if any spec fails to compile or register.
func BuildRegistry(cfg *Config) (*checker.Registry, error) {
	reg := checker.NewRegistry()
	for _, spec := range cfg.Checkers {
		compiled, err := spec.Build()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(compiled); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
