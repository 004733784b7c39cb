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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/checkd/internal/checker"
	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
	"github.com/AleutianAI/checkd/internal/parse"
)

// =============================================================================
// SUPERVISOR
// =============================================================================

// Supervisor launches checker jobs and dispatches their results.
//
// Description:
//
//	Owns the job registry, the process executor, and the reporter.
//	Check launches one checker against one document snapshot, superseding
//	any running job for the same key; the completion handler decides at
//	exit time whether the finished job is still current and only then
//	reports.
//
// Thread Safety: Safe for concurrent use.
type Supervisor struct {
	registry *Registry
	checkers *checker.Registry
	executor Executor
	reporter diag.Reporter
	logger   *slog.Logger
}

// Option configures the Supervisor.
type Option func(*Supervisor)

// WithExecutor sets a custom process executor.
func WithExecutor(e Executor) Option {
	return func(s *Supervisor) {
		s.executor = e
	}
}

// WithReporter sets the diagnostics reporter.
func WithReporter(r diag.Reporter) Option {
	return func(s *Supervisor) {
		s.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// NewSupervisor creates a supervisor over the given checker registry.
//
// Description:
//
//	Defaults: os/exec executor, slog-based reporter, slog.Default()
//	logger. Production callers typically supply a MultiReporter chaining
//	a result store and a log reporter.
//
// Inputs:
//
//	checkers - Checker configurations available for launching.
//	opts - Optional configuration options.
//
// Outputs:
//
//	*Supervisor - The configured supervisor. Never nil.
func NewSupervisor(checkers *checker.Registry, opts ...Option) *Supervisor {
	s := &Supervisor{
		registry: NewRegistry(),
		checkers: checkers,
		executor: NewExecExecutor(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("component", "job_supervisor"))
	if s.reporter == nil {
		s.reporter = diag.NewLogReporter(s.logger)
	}

	return s
}

// Registry returns the supervisor's job registry.
func (s *Supervisor) Registry() *Registry {
	return s.registry
}

// =============================================================================
// LAUNCH
// =============================================================================

// Check launches one checker against a document snapshot.
//
// Description:
//
//	Runs the checker's pre-flight validation, prepares input (temp file
//	or stdin stream), supersedes any running job for the same
//	(document, checker) key, and starts the process. Returns as soon as
//	the process is running; results arrive asynchronously through the
//	reporter.
//
// Inputs:
//
//	ctx - Context for launch-time work. Does not bound the process.
//	doc - Document snapshot. Must not be nil.
//	checkerName - Name of a registered checker.
//
// Outputs:
//
//	*Job - The launched job. Wait on Job.Done() for completion.
//	error - Non-nil if the launch failed before the process started.
//
// Errors:
//
//	checker.ErrUnknownChecker - No config registered under checkerName
//	ErrPreflight - Pre-flight validation failed; checker disabled for
//	this invocation, no temp files left behind
//	ErrStartFailed - The process could not be spawned
//
// Thread Safety: Safe for concurrent use, including concurrent launches
// for the same key.
func (s *Supervisor) Check(ctx context.Context, doc *document.Document, checkerName string) (*Job, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if doc == nil {
		return nil, ErrNilDocument
	}

	cfg := s.checkers.Get(checkerName)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", checker.ErrUnknownChecker, checkerName)
	}

	return s.launch(ctx, doc, cfg)
}

// CheckAll launches every enabled checker against a document snapshot.
//
// Description:
//
//	Checkers run independently: a pre-flight or spawn failure in one
//	disables only that checker for this invocation and never blocks the
//	others. Failures are joined into the returned error for callers that
//	want to surface them.
//
// Inputs:
//
//	ctx - Context for launch-time work.
//	doc - Document snapshot. Must not be nil.
//
// Outputs:
//
//	[]*Job - Jobs that launched successfully.
//	error - Joined launch errors, or nil if every checker launched.
//
// Thread Safety: Safe for concurrent use.
func (s *Supervisor) CheckAll(ctx context.Context, doc *document.Document) ([]*Job, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if doc == nil {
		return nil, ErrNilDocument
	}

	var jobs []*Job
	var errs []error
	for _, name := range s.checkers.Names() {
		cfg := s.checkers.Get(name)
		if cfg == nil || !cfg.Enabled {
			continue
		}
		j, err := s.launch(ctx, doc, cfg)
		if err != nil {
			s.logger.Warn("checker disabled for this run",
				slog.String("checker", name),
				slog.String("document", string(doc.ID)),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, j)
	}

	return jobs, errors.Join(errs...)
}

// launch implements the launch contract for one checker config.
func (s *Supervisor) launch(ctx context.Context, doc *document.Document, cfg *checker.Config) (*Job, error) {
	ctx, span := startJobSpan(ctx, cfg.Name, doc.ID)

	// Pre-flight runs before any process or file exists, so a failure
	// here cannot leave anything to clean up.
	if cfg.Preflight != nil {
		if err := cfg.Preflight(ctx, doc); err != nil {
			span.SetStatus(codes.Error, "preflight failed")
			span.End()
			return nil, fmt.Errorf("%w: %s: %v", ErrPreflight, cfg.Name, err)
		}
	}

	j := &Job{
		id:      uuid.NewString(),
		key:     Key{DocumentID: doc.ID, Checker: cfg.Name},
		doc:     doc,
		started: time.Now(),
		span:    span,
		done:    make(chan struct{}),
	}

	inputPath := doc.Path
	if cfg.InputMode == checker.InputFile {
		dir, err := os.MkdirTemp("", "checkd-")
		if err != nil {
			span.End()
			return nil, fmt.Errorf("creating temp dir: %w", err)
		}
		j.tempDir = dir
		inputPath = filepath.Join(dir, doc.FileName())
		if err := os.WriteFile(inputPath, doc.Content, 0o600); err != nil {
			s.removeTempDir(j)
			span.End()
			return nil, fmt.Errorf("writing snapshot: %w", err)
		}
	}

	argv, err := cfg.ExpandCommand(inputPath)
	if err != nil {
		s.removeTempDir(j)
		span.End()
		return nil, err
	}

	// Supersede: installing the new job and fetching the old one is one
	// atomic registry operation, so a completion handler racing with this
	// launch either sees the old job (and may report) or the new one (and
	// discards). Terminating the displaced process afterwards is only an
	// optimization; obsolescence is what cancels it.
	prev := s.registry.Set(j.key, j)
	if prev != nil {
		s.logger.Info("superseding running job",
			slog.String("key", j.key.String()),
			slog.String("old_job", prev.id),
			slog.String("new_job", j.id),
		)
		prev.terminate()
	}

	handle, err := s.executor.Start(ctx, argv, cfg.InputMode == checker.InputPipe)
	if err != nil {
		s.registry.Remove(j.key, j)
		s.removeTempDir(j)
		span.SetStatus(codes.Error, "spawn failed")
		span.End()
		recordJobMetrics(ctx, cfg.Name, outcomeFailed, time.Since(j.started), 0)
		return nil, fmt.Errorf("%w: %s: %v", ErrStartFailed, cfg.Name, err)
	}
	j.attach(handle)

	if cfg.Timeout > 0 {
		j.armTimeout(cfg.Timeout)
	}

	handle.OnExit(s.completion(j, cfg))

	if cfg.InputMode == checker.InputPipe {
		// Stream the full snapshot, then close to signal end-of-input.
		// Write errors are tolerated: a checker that exits before
		// draining stdin is reporting on a prefix, and its exit handler
		// still runs.
		if _, err := handle.Write(doc.Content); err != nil {
			s.logger.Debug("stdin write failed; checker may have exited early",
				slog.String("key", j.key.String()),
				slog.String("error", err.Error()),
			)
		}
		if err := handle.CloseInput(); err != nil {
			s.logger.Debug("stdin close failed",
				slog.String("key", j.key.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Debug("job launched",
		slog.String("key", j.key.String()),
		slog.String("job", j.id),
		slog.String("input_mode", cfg.InputMode.String()),
	)

	return j, nil
}

// =============================================================================
// COMPLETION
// =============================================================================

// completion builds the exit handler for one job.
//
// The handler runs once, on the executor's exit goroutine, possibly
// concurrently with new launches and possibly long after the owning
// document went away; it touches nothing of the document beyond its
// identity. Cleanup runs exactly once on every path.
func (s *Supervisor) completion(j *Job, cfg *checker.Config) func(exitCode int, output []byte) {
	return func(exitCode int, output []byte) {
		defer close(j.done)
		defer j.span.End()
		defer s.removeTempDir(j)

		j.stopTimeout()

		// Currency must be read now, not captured at launch: a job
		// superseded between exit and this lookup is obsolete too.
		if !s.registry.IsCurrent(j.key, j) {
			s.logger.Info("discarding results of obsolete job",
				slog.String("key", j.key.String()),
				slog.String("job", j.id),
				slog.Int("exit_code", exitCode),
			)
			j.span.SetAttributes(attribute.String("outcome", outcomeSuperseded))
			recordJobMetrics(context.Background(), cfg.Name, outcomeSuperseded, time.Since(j.started), 0)
			return
		}

		// Checkers routinely exit non-zero when they find issues; the
		// parse result, not the exit code, decides what gets reported.
		diags := parse.Scan(j.doc, cfg, output)
		s.reporter.Report(j.key.DocumentID, diags)
		s.registry.Remove(j.key, j)

		s.logger.Debug("job completed",
			slog.String("key", j.key.String()),
			slog.String("job", j.id),
			slog.Int("exit_code", exitCode),
			slog.Int("diagnostics", len(diags)),
			slog.Duration("duration", time.Since(j.started)),
		)
		j.span.SetAttributes(
			attribute.String("outcome", outcomeReported),
			attribute.Int("diagnostics", len(diags)),
		)
		recordJobMetrics(context.Background(), cfg.Name, outcomeReported, time.Since(j.started), len(diags))
	}
}

// removeTempDir deletes a job's temp directory, if it has one. Best
// effort: a failure is logged and never propagated, so one broken cleanup
// step cannot skip the others.
func (s *Supervisor) removeTempDir(j *Job) {
	if j.tempDir == "" {
		return
	}
	if err := os.RemoveAll(j.tempDir); err != nil {
		s.logger.Warn("temp dir cleanup failed",
			slog.String("job", j.id),
			slog.String("dir", j.tempDir),
			slog.String("error", err.Error()),
		)
	}
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown terminates all registered jobs and waits for their completion
// handlers.
//
// Description:
//
//	Every running process receives a termination request; the method
//	then blocks until each job's handler has finished (reporting or
//	discarding, plus cleanup) or ctx expires.
//
// Inputs:
//
//	ctx - Bounds the wait.
//
// Outputs:
//
//	error - ctx.Err() if the deadline expired with handlers still
//	outstanding.
//
// Thread Safety: Safe for concurrent use. Idempotent.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	jobs := s.registry.Snapshot()
	for _, j := range jobs {
		j.terminate()
	}

	for _, j := range jobs {
		select {
		case <-j.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.logger.Info("supervisor shut down", slog.Int("jobs_terminated", len(jobs)))
	return nil
}
