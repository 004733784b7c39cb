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

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/checkd/internal/document"
)

// Package-level tracer and meter for job supervision.
var (
	tracer = otel.Tracer("checkd.job")
	meter  = otel.Meter("checkd.job")
)

// Job outcome labels.
const (
	outcomeReported   = "reported"
	outcomeSuperseded = "superseded"
	outcomeFailed     = "failed"
)

// Metrics for job supervision.
var (
	jobsTotal     metric.Int64Counter
	jobDuration   metric.Float64Histogram
	diagsReported metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		jobsTotal, err = meter.Int64Counter(
			"checkd_jobs_total",
			metric.WithDescription("Completed checker jobs by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		jobDuration, err = meter.Float64Histogram(
			"checkd_job_duration_seconds",
			metric.WithDescription("Wall time from launch to completion handler"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagsReported, err = meter.Int64Histogram(
			"checkd_diagnostics_reported",
			metric.WithDescription("Diagnostics per reported batch"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startJobSpan begins a span covering one job from launch to completion.
func startJobSpan(ctx context.Context, checkerName string, doc document.ID) (context.Context, trace.Span) {
	return tracer.Start(ctx, "job.run",
		trace.WithAttributes(
			attribute.String("checker", checkerName),
			attribute.String("document", string(doc)),
		),
	)
}

// recordJobMetrics records the outcome of one completed job.
// Metric initialization failures are deliberately non-fatal.
func recordJobMetrics(ctx context.Context, checkerName, outcome string, duration time.Duration, reported int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("checker", checkerName),
		attribute.String("outcome", outcome),
	)
	jobsTotal.Add(ctx, 1, attrs)
	jobDuration.Record(ctx, duration.Seconds(), attrs)
	if outcome == outcomeReported {
		diagsReported.Record(ctx, int64(reported), attrs)
	}
}
