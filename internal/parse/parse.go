// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package parse converts raw checker output into ordered diagnostics.
//
// Each completed process gets one fresh scan; no state is carried between
// runs. Matches are found non-overlapping from the start of the output and
// diagnostics are emitted in that same order, never re-sorted.
package parse

import (
	"github.com/AleutianAI/checkd/internal/checker"
	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// Scan extracts diagnostics from raw checker output.
//
// Description:
//
//	Repeatedly applies the config's matcher from the head of the output,
//	non-overlapping, and runs the extraction function on each hit.
//	Candidates with SeverityNone are discarded silently; that is policy
//	for matcher hits that are not diagnostics, not an error. Zero
//	matches yields an empty, non-nil slice so that reporting still
//	happens (and clears stale results downstream).
//
// Inputs:
//
//	doc - The document the job ran against. Read-only.
//	cfg - The checker whose matcher and extraction function to apply.
//	output - Raw combined output of the finished process.
//
// Outputs:
//
//	[]diag.Diagnostic - Diagnostics in output order. Never nil.
//
// Thread Safety: Safe for concurrent use; all state is local.
func Scan(doc *document.Document, cfg *checker.Config, output []byte) []diag.Diagnostic {
	diags := make([]diag.Diagnostic, 0, 8)

	pos := 0
	for pos <= len(output) {
		loc := cfg.Pattern.FindSubmatchIndex(output[pos:])
		if loc == nil {
			break
		}

		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = string(output[pos+loc[2*i] : pos+loc[2*i+1]])
			}
		}
		m := checker.Match{
			Start:  pos + loc[0],
			End:    pos + loc[1],
			Groups: groups,
		}

		cand := cfg.Extract(m, doc)
		if cand.Severity != diag.SeverityNone {
			diags = append(diags, diag.Diagnostic{
				DocumentID: doc.ID,
				Start:      cand.Start,
				End:        cand.End,
				Severity:   cand.Severity,
				Message:    cand.Message,
				Rule:       cand.Rule,
				Checker:    cfg.Name,
			})
		}

		// Advance past the match; a zero-width match must not stall the scan.
		if loc[1] > loc[0] {
			pos += loc[1]
		} else {
			pos += loc[1] + 1
		}
	}

	return diags
}
