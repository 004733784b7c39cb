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
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/checkd/internal/document"
)

// =============================================================================
// KEY
// =============================================================================

// Key identifies the registry slot a job occupies: one document, one
// checker. At most one current job exists per key at any time.
type Key struct {
	// DocumentID is the owning document's identity.
	DocumentID document.ID

	// Checker is the checker config name.
	Checker string
}

// String returns "document/checker" for logs.
func (k Key) String() string {
	return string(k.DocumentID) + "/" + k.Checker
}

// =============================================================================
// JOB
// =============================================================================

// Job is one live or completed checker invocation.
//
// A job is "current" iff it is the value the Registry holds for its key;
// any other instance is obsolete and its results are discarded.
//
// Thread Safety: Safe for concurrent use.
type Job struct {
	id      string
	key     Key
	doc     *document.Document
	tempDir string
	started time.Time
	span    trace.Span

	// done closes when the completion handler has fully finished,
	// including cleanup. Used by Shutdown and by callers that want to
	// wait for results.
	done chan struct{}

	mu            sync.Mutex
	handle        Handle
	timer         *time.Timer
	termRequested bool
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// Key returns the registry key the job runs under.
func (j *Job) Key() Key { return j.key }

// Document returns the snapshot the job ran against.
func (j *Job) Document() *document.Document { return j.doc }

// Started returns when the job was launched.
func (j *Job) Started() time.Time { return j.started }

// Done returns a channel closed when the job's completion handler has
// finished, whether the job was current or obsolete.
func (j *Job) Done() <-chan struct{} { return j.done }

// attach installs the process handle once the process has started.
//
// A termination requested before the handle existed (a racing supersede)
// is honored immediately.
func (j *Job) attach(h Handle) {
	j.mu.Lock()
	j.handle = h
	term := j.termRequested
	j.mu.Unlock()
	if term {
		h.Terminate()
	}
}

// terminate requests best-effort termination of the job's process.
//
// Safe to call at any point in the lifecycle, including before the
// process handle exists and after the process exited.
func (j *Job) terminate() {
	j.mu.Lock()
	j.termRequested = true
	h := j.handle
	j.mu.Unlock()
	if h != nil {
		h.Terminate()
	}
}

// armTimeout starts a kill timer for the job.
func (j *Job) armTimeout(d time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.timer = time.AfterFunc(d, j.terminate)
}

// stopTimeout cancels a pending kill timer, if any.
func (j *Job) stopTimeout() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
}
