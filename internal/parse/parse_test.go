// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package parse

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/checkd/internal/checker"
	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// diagCheckerConfig matches lines like "diag:4 HIGH X1: msg". The level
// UNDEFINED maps to no severity, so such matches are dropped.
func diagCheckerConfig() *checker.Config {
	return &checker.Config{
		Name:      "diagchk",
		Command:   []string{"diagchk", "-"},
		InputMode: checker.InputPipe,
		Pattern:   regexp.MustCompile(`(?m)^diag:(\d+) (\w+) (X\d+): (.*)$`),
		Extract: func(m checker.Match, doc *document.Document) checker.Candidate {
			var sev diag.Severity
			switch m.Group(2) {
			case "HIGH":
				sev = diag.SeverityError
			case "MED":
				sev = diag.SeverityWarning
			case "LOW":
				sev = diag.SeverityInfo
			default:
				sev = diag.SeverityNone
			}
			start, end := doc.LineRange(atoiGroup(m.Group(1)))
			return checker.Candidate{
				Start:    start,
				End:      end,
				Severity: sev,
				Message:  fmt.Sprintf("%s (%s)", m.Group(4), m.Group(3)),
			}
		},
		Enabled: true,
	}
}

func atoiGroup(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func fiveLineDoc() *document.Document {
	return document.New("doc-1", "sample.txt", []byte("l1\nl2\nl3\nl4 body\nl5\n"), 0)
}

func TestScan_OrderedMatches(t *testing.T) {
	cfg := diagCheckerConfig()
	doc := fiveLineDoc()
	output := []byte("diag:4 HIGH X1: first\nnoise line\ndiag:1 MED X2: second\ndiag:5 LOW X3: third\n")

	diags := Scan(doc, cfg, output)

	require.Len(t, diags, 3)
	// Output order, not document order: line 4 before line 1.
	assert.Equal(t, "first (X1)", diags[0].Message)
	assert.Equal(t, "second (X2)", diags[1].Message)
	assert.Equal(t, "third (X3)", diags[2].Message)
	assert.Equal(t, diag.SeverityError, diags[0].Severity)
	assert.Equal(t, diag.SeverityWarning, diags[1].Severity)
	assert.Equal(t, diag.SeverityInfo, diags[2].Severity)
	for _, d := range diags {
		assert.Equal(t, document.ID("doc-1"), d.DocumentID)
		assert.Equal(t, "diagchk", d.Checker)
	}
}

func TestScan_AbsentSeverityDropped(t *testing.T) {
	cfg := diagCheckerConfig()
	doc := fiveLineDoc()

	diags := Scan(doc, cfg, []byte("diag:4 UNDEFINED X1: msg\n"))
	assert.Empty(t, diags, "none severity must be dropped silently")

	diags = Scan(doc, cfg, []byte("diag:4 HIGH X1: msg\n"))
	require.Len(t, diags, 1)
	assert.Equal(t, "msg (X1)", diags[0].Message)
	assert.Equal(t, diag.SeverityError, diags[0].Severity)

	// Span derived from line 4 of the document ("l4 body").
	wantStart, wantEnd := doc.LineRange(4)
	assert.Equal(t, wantStart, diags[0].Start)
	assert.Equal(t, wantEnd, diags[0].End)
}

func TestScan_MixedDropAndKeep(t *testing.T) {
	cfg := diagCheckerConfig()
	doc := fiveLineDoc()
	output := []byte("diag:1 HIGH X1: a\ndiag:2 UNDEFINED X2: b\ndiag:3 MED X3: c\n")

	diags := Scan(doc, cfg, output)

	require.Len(t, diags, 2)
	assert.Equal(t, "a (X1)", diags[0].Message)
	assert.Equal(t, "c (X3)", diags[1].Message)
}

func TestScan_NoMatches(t *testing.T) {
	cfg := diagCheckerConfig()
	doc := fiveLineDoc()

	diags := Scan(doc, cfg, []byte("nothing to see here\n"))

	require.NotNil(t, diags, "empty result must still be reportable")
	assert.Empty(t, diags)

	diags = Scan(doc, cfg, nil)
	require.NotNil(t, diags)
	assert.Empty(t, diags)
}

func TestScan_ZeroWidthMatchAdvances(t *testing.T) {
	cfg := diagCheckerConfig()
	cfg.Pattern = regexp.MustCompile(`x*`)
	cfg.Extract = func(m checker.Match, doc *document.Document) checker.Candidate {
		return checker.Candidate{Severity: diag.SeverityInfo, Message: "hit"}
	}
	doc := fiveLineDoc()

	// A pattern that matches empty everywhere must terminate: one
	// zero-width hit per scan position, then done.
	diags := Scan(doc, cfg, []byte("ab"))
	assert.Len(t, diags, 3)
}

func TestScan_FreshPerRun(t *testing.T) {
	cfg := diagCheckerConfig()
	doc := fiveLineDoc()
	output := []byte("diag:1 HIGH X1: a\n")

	first := Scan(doc, cfg, output)
	second := Scan(doc, cfg, output)

	assert.Equal(t, first, second, "no state may leak between scans")
}
