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

import (
	"log/slog"
	"sync"

	"github.com/AleutianAI/checkd/internal/document"
)

// Reporter receives the final ordered diagnostic batch for a document.
//
// Description:
//
//	Report is called exactly once per completed, current job: with the
//	diagnostics in output order, or with an empty slice when the checker
//	found nothing. Obsolete jobs never report. Implementations must not
//	block for long; they run on the job's completion goroutine.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Reporter interface {
	Report(doc document.ID, diags []Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(doc document.ID, diags []Diagnostic)

// Report implements Reporter.
func (f ReporterFunc) Report(doc document.ID, diags []Diagnostic) {
	f(doc, diags)
}

// MultiReporter fans one batch out to several reporters in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(doc document.ID, diags []Diagnostic) {
	for _, r := range m {
		r.Report(doc, diags)
	}
}

// LogReporter logs reported batches via slog.
//
// Thread Safety: Safe for concurrent use.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter that logs batch summaries.
//
// Inputs:
//
//	logger - Destination logger. If nil, uses slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{
		logger: logger.With(slog.String("component", "diag_reporter")),
	}
}

// Report implements Reporter.
func (r *LogReporter) Report(doc document.ID, diags []Diagnostic) {
	counts := make(map[Severity]int, 3)
	for _, d := range diags {
		counts[d.Severity]++
	}
	r.logger.Info("diagnostics reported",
		slog.String("document", string(doc)),
		slog.Int("total", len(diags)),
		slog.Int("errors", counts[SeverityError]),
		slog.Int("warnings", counts[SeverityWarning]),
		slog.Int("infos", counts[SeverityInfo]),
	)
	for _, d := range diags {
		r.logger.Debug("diagnostic",
			slog.String("document", string(doc)),
			slog.String("severity", d.Severity.String()),
			slog.Int("start", d.Start),
			slog.Int("end", d.End),
			slog.String("rule", d.Rule),
			slog.String("message", d.Message),
		)
	}
}

// CollectReporter retains the most recent batch per document.
//
// Description:
//
//	Used by the CLI to gather results after waiting for jobs, and by
//	tests to observe reporting behavior. Each Report call replaces the
//	previous batch for that document; the supervisor's currency check
//	guarantees batches arrive in supersession order.
//
// Thread Safety: Safe for concurrent use.
type CollectReporter struct {
	mu      sync.Mutex
	batches map[document.ID][]Diagnostic
	calls   int
}

// NewCollectReporter creates an empty collector.
func NewCollectReporter() *CollectReporter {
	return &CollectReporter{
		batches: make(map[document.ID][]Diagnostic),
	}
}

// Report implements Reporter.
func (c *CollectReporter) Report(doc document.ID, diags []Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := make([]Diagnostic, len(diags))
	copy(batch, diags)
	c.batches[doc] = batch
	c.calls++
}

// Get returns the last reported batch for a document.
//
// Outputs:
//
//	[]Diagnostic - Copy of the batch. Nil if the document never reported.
//	bool - True if a batch exists (possibly empty).
func (c *CollectReporter) Get(doc document.ID) ([]Diagnostic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch, ok := c.batches[doc]
	if !ok {
		return nil, false
	}
	out := make([]Diagnostic, len(batch))
	copy(out, batch)
	return out, true
}

// Calls returns the total number of Report invocations observed.
func (c *CollectReporter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Documents returns the IDs of all documents with a reported batch.
func (c *CollectReporter) Documents() []document.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]document.ID, 0, len(c.batches))
	for id := range c.batches {
		out = append(out, id)
	}
	return out
}
