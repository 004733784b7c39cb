// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diagfmt renders diagnostics for terminals.
//
// The format is the conventional compiler-style line,
//
//	path:line:col: severity: message [rule] (checker)
//
// with the severity colored when stdout is a terminal. fatih/color
// handles the no-TTY and NO_COLOR cases itself.
package diagfmt

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	ruleColor    = color.New(color.Faint)
)

// severityColor picks the color for a severity label.
func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SeverityError:
		return errorColor
	case diag.SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Write renders one document's diagnostics to w.
//
// Description:
//
//	Diagnostics print sorted by position. Offsets convert to 1-based
//	line/column through the document snapshot, so the rendered locations
//	refer to the content that was actually checked.
//
// Inputs:
//
//	w - Destination writer.
//	doc - The checked snapshot.
//	diags - Diagnostics for that snapshot.
//
// Outputs:
//
//	error - Non-nil on a write failure.
func Write(w io.Writer, doc *document.Document, diags []diag.Diagnostic) error {
	sorted := make([]diag.Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for _, d := range sorted {
		line, col := doc.Position(d.Start)
		suffix := ""
		if d.Rule != "" {
			suffix = ruleColor.Sprintf(" [%s]", d.Rule)
		}
		if d.Checker != "" {
			suffix += ruleColor.Sprintf(" (%s)", d.Checker)
		}
		_, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s%s\n",
			doc.Path, line, col,
			severityColor(d.Severity).Sprint(d.Severity.String()),
			d.Message, suffix,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Summary renders a one-line count of diagnostics by severity.
func Summary(w io.Writer, diags []diag.Diagnostic) error {
	if len(diags) == 0 {
		_, err := fmt.Fprintln(w, "no issues found")
		return err
	}

	var errs, warns, infos int
	for _, d := range diags {
		switch d.Severity {
		case diag.SeverityError:
			errs++
		case diag.SeverityWarning:
			warns++
		default:
			infos++
		}
	}

	_, err := fmt.Fprintf(w, "%s, %s, %s\n",
		errorColor.Sprintf("%d errors", errs),
		warningColor.Sprintf("%d warnings", warns),
		infoColor.Sprintf("%d notes", infos),
	)
	return err
}
