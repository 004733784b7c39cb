// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/checkd/internal/config"
	"github.com/AleutianAI/checkd/internal/job"
	"github.com/AleutianAI/checkd/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoCheckerSpec runs a real shell command that ignores its input and
// prints one fixed finding, so the full submit-run-store path is
// exercised without any linter installed.
func echoCheckerSpec(name string) config.CheckerSpec {
	return config.CheckerSpec{
		Name:      name,
		Command:   []string{"sh", "-c", "cat >/dev/null; echo 'E:1 fixture finding'"},
		InputMode: "pipe",
		Pattern:   `(?m)^E:(\d+) (.*)$`,
		Groups:    config.GroupSpec{Line: 1, Message: 2},
		Severity:  "warning",
		Enabled:   true,
	}
}

type testServer struct {
	srv     *Server
	results *store.Store
}

func newTestServer(t *testing.T, specs ...config.CheckerSpec) *testServer {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture checkers drive sh")
	}

	checkers, err := config.BuildRegistry(&config.Config{Checkers: specs})
	require.NoError(t, err)

	results, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = results.Close() })

	sup := job.NewSupervisor(checkers, job.WithReporter(results.Reporter()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sup.Shutdown(ctx)
	})

	srv, err := New(sup, checkers, results, nil)
	require.NoError(t, err)
	return &testServer{srv: srv, results: results}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("echo"))

	w := ts.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandleCheck_LaunchesAndStoresResults(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("echo"))

	w := ts.do(http.MethodPost, "/v1/check", CheckRequest{
		DocumentID: "doc-1",
		Path:       "script.sh",
		Content:    "echo hi\n",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "doc-1", resp.DocumentID)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "echo", resp.Jobs[0].Checker)
	assert.NotEmpty(t, resp.Jobs[0].JobID)

	// The diagnostics land asynchronously.
	require.Eventually(t, func() bool {
		_, _, ok, err := ts.results.Get("doc-1")
		return err == nil && ok
	}, 10*time.Second, 50*time.Millisecond)

	got := ts.do(http.MethodGet, "/v1/diagnostics?document=doc-1", nil)
	require.Equal(t, http.StatusOK, got.Code)

	var dr DiagnosticsResponse
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &dr))
	require.Len(t, dr.Diagnostics, 1)
	assert.Equal(t, "fixture finding", dr.Diagnostics[0].Message)
	assert.Equal(t, "echo", dr.Diagnostics[0].Checker)
}

func TestHandleCheck_NamedCheckerSelection(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("first"), echoCheckerSpec("second"))

	w := ts.do(http.MethodPost, "/v1/check", CheckRequest{
		Content:  "x\n",
		Checkers: []string{"second"},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "second", resp.Jobs[0].Checker)
	assert.NotEmpty(t, resp.DocumentID, "server generates an id when absent")
}

func TestHandleCheck_BadRequests(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("echo"))

	w := ts.do(http.MethodPost, "/v1/check", map[string]any{"path": "x.sh"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "content is required")

	w = ts.do(http.MethodPost, "/v1/check", CheckRequest{
		Content:  "x\n",
		Checkers: []string{"nonexistent"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "no job launched")
}

func TestHandleDiagnostics_Missing(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("echo"))

	w := ts.do(http.MethodGet, "/v1/diagnostics?document=unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/v1/diagnostics", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDocuments(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("echo"))
	require.NoError(t, ts.results.Put("stored-doc", nil))

	w := ts.do(http.MethodGet, "/v1/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stored-doc")
}

func TestHandleCheckers(t *testing.T) {
	ts := newTestServer(t, echoCheckerSpec("echo"))

	w := ts.do(http.MethodGet, "/v1/checkers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Checkers []CheckerInfo `json:"checkers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Checkers, 1)
	assert.Equal(t, "echo", resp.Checkers[0].Name)
	assert.Equal(t, "pipe", resp.Checkers[0].InputMode)
	assert.True(t, resp.Checkers[0].Available, "sh is on PATH")
}
