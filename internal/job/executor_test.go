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
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitResult struct {
	code   int
	output []byte
}

// waitExit blocks on the handle's exit callback with a test deadline.
func waitExit(t *testing.T, h Handle) exitResult {
	t.Helper()
	ch := make(chan exitResult, 1)
	h.OnExit(func(code int, output []byte) {
		ch <- exitResult{code: code, output: output}
	})
	select {
	case res := <-ch:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
		return exitResult{}
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive sh")
	}
}

func TestExecExecutor_ExitCodeAndCombinedOutput(t *testing.T) {
	skipOnWindows(t)
	e := NewExecExecutor()

	h, err := e.Start(context.Background(), []string{"sh", "-c", "echo out; echo err 1>&2; exit 3"}, false)
	require.NoError(t, err)

	res := waitExit(t, h)
	assert.Equal(t, 3, res.code)
	assert.Contains(t, string(res.output), "out\n")
	assert.Contains(t, string(res.output), "err\n")
}

func TestExecExecutor_StdinRoundtrip(t *testing.T) {
	skipOnWindows(t)
	e := NewExecExecutor()

	h, err := e.Start(context.Background(), []string{"cat"}, true)
	require.NoError(t, err)

	_, err = h.Write([]byte("first line\nsecond line\n"))
	require.NoError(t, err)
	require.NoError(t, h.CloseInput())

	res := waitExit(t, h)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "first line\nsecond line\n", string(res.output))
}

func TestExecExecutor_TerminateKillsProcess(t *testing.T) {
	skipOnWindows(t)
	e := NewExecExecutor()

	h, err := e.Start(context.Background(), []string{"sleep", "30"}, false)
	require.NoError(t, err)

	start := time.Now()
	h.Terminate()
	res := waitExit(t, h)

	assert.NotEqual(t, 0, res.code, "killed process must not report success")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestExecExecutor_StartErrors(t *testing.T) {
	e := NewExecExecutor()

	_, err := e.Start(context.Background(), nil, false)
	assert.Error(t, err)

	_, err = e.Start(context.Background(), []string{"checkd-no-such-binary-xyzzy"}, false)
	assert.Error(t, err)
}

func TestExecHandle_WriteWithoutStdin(t *testing.T) {
	skipOnWindows(t)
	e := NewExecExecutor()

	h, err := e.Start(context.Background(), []string{"true"}, false)
	require.NoError(t, err)

	_, err = h.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrNoStdin)
	assert.NoError(t, h.CloseInput(), "closing absent stdin is a no-op")

	waitExit(t, h)
}
