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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// =============================================================================
// EXECUTOR CONTRACT
// =============================================================================

// Handle is one started checker process.
//
// Thread Safety: Implementations must be safe for concurrent use;
// Terminate in particular races with the exit callback by design.
type Handle interface {
	// Write streams bytes to the process's stdin. Only valid for
	// processes started with stdin enabled.
	Write(p []byte) (int, error)

	// CloseInput closes stdin to signal end-of-input. No data may be
	// written after CloseInput.
	CloseInput() error

	// Terminate requests best-effort termination. It never blocks and
	// gives no guarantee; the exit callback still fires.
	Terminate()

	// OnExit registers fn to run exactly once when the process exits,
	// on its own goroutine, with the exit code and combined output.
	// Must be called at most once per handle.
	OnExit(fn func(exitCode int, output []byte))
}

// Executor starts checker processes.
//
// Description:
//
//	Abstracts process execution so the supervisor's lifecycle rules can
//	be exercised against scripted fakes. The production implementation
//	is ExecExecutor.
type Executor interface {
	// Start launches argv asynchronously. When stdin is true the caller
	// will stream input via Handle.Write/CloseInput.
	//
	// The process's lifetime is owned by the job registry, not by ctx;
	// ctx covers only launch-time work.
	Start(ctx context.Context, argv []string, stdin bool) (Handle, error)
}

// =============================================================================
// OS/EXEC IMPLEMENTATION
// =============================================================================

// ExecExecutor runs checker processes via os/exec.
//
// Thread Safety: Safe for concurrent use.
type ExecExecutor struct {
	// Dir is the working directory for started processes. Empty means
	// the supervisor process's working directory.
	Dir string
}

// NewExecExecutor creates an os/exec-backed executor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Start implements Executor.
func (e *ExecExecutor) Start(_ context.Context, argv []string, stdin bool) (Handle, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argv")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = e.Dir

	// Stdout and stderr share one buffer; checkers split findings across
	// both and the matcher sees the combined stream. os/exec serializes
	// the two when given the same writer.
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	h := &execHandle{cmd: cmd, output: &output}

	if stdin {
		w, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		h.stdin = w
	}

	if err := cmd.Start(); err != nil {
		if h.stdin != nil {
			_ = h.stdin.Close()
		}
		return nil, err
	}

	return h, nil
}

// execHandle wraps a started *exec.Cmd.
type execHandle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output *bytes.Buffer

	closeOnce sync.Once
	exitOnce  sync.Once
}

// Write implements Handle.
func (h *execHandle) Write(p []byte) (int, error) {
	if h.stdin == nil {
		return 0, ErrNoStdin
	}
	return h.stdin.Write(p)
}

// CloseInput implements Handle.
func (h *execHandle) CloseInput() error {
	if h.stdin == nil {
		return nil
	}
	var err error
	h.closeOnce.Do(func() {
		err = h.stdin.Close()
	})
	return err
}

// Terminate implements Handle. Kill failures (process already gone) are
// ignored; the exit callback is the source of truth.
func (h *execHandle) Terminate() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

// OnExit implements Handle.
func (h *execHandle) OnExit(fn func(exitCode int, output []byte)) {
	h.exitOnce.Do(func() {
		go func() {
			err := h.cmd.Wait()
			code := 0
			var exitErr *exec.ExitError
			switch {
			case err == nil:
			case errors.As(err, &exitErr):
				code = exitErr.ExitCode()
			default:
				// Wait failed before the process ran to completion.
				code = -1
			}
			// Wait has returned, so the output copy goroutines are done
			// and the buffer is safe to read.
			fn(code, h.output.Bytes())
		}()
	})
}
