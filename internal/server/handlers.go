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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// MaxContentBytes caps the document content accepted by /v1/check.
const MaxContentBytes = 4 * 1024 * 1024 // 4MB

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	// DocumentID identifies the document across snapshots. Empty gets a
	// generated id.
	DocumentID string `json:"document_id"`

	// Path is the document's file path, used for {file} expansion and
	// display. Optional.
	Path string `json:"path"`

	// Content is the snapshot to check.
	Content string `json:"content" binding:"required"`

	// Version orders snapshots of the same document. Optional.
	Version int64 `json:"version"`

	// Checkers names the checkers to run. Empty runs every enabled
	// checker.
	Checkers []string `json:"checkers"`
}

// LaunchedJob describes one job started by /v1/check.
type LaunchedJob struct {
	JobID   string `json:"job_id"`
	Checker string `json:"checker"`
}

// CheckResponse is the body returned by POST /v1/check.
type CheckResponse struct {
	DocumentID string        `json:"document_id"`
	Jobs       []LaunchedJob `json:"jobs"`
	Errors     []string      `json:"errors,omitempty"`
}

// handleCheck launches checkers against a submitted snapshot.
//
// Results are asynchronous: the response confirms which jobs launched,
// and the diagnostics land in the store when the processes finish. A
// newer snapshot for the same document supersedes still-running jobs.
func (s *Server) handleCheck(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if len(req.Content) > MaxContentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "content exceeds limit"})
		return
	}

	doc := document.New(document.ID(req.DocumentID), req.Path, []byte(req.Content), req.Version)
	resp := CheckResponse{DocumentID: string(doc.ID), Jobs: []LaunchedJob{}}

	if len(req.Checkers) == 0 {
		jobs, err := s.supervisor.CheckAll(c.Request.Context(), doc)
		for _, j := range jobs {
			resp.Jobs = append(resp.Jobs, LaunchedJob{JobID: j.ID(), Checker: j.Key().Checker})
		}
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
		}
	} else {
		for _, name := range req.Checkers {
			j, err := s.supervisor.Check(c.Request.Context(), doc, name)
			if err != nil {
				resp.Errors = append(resp.Errors, err.Error())
				continue
			}
			resp.Jobs = append(resp.Jobs, LaunchedJob{JobID: j.ID(), Checker: j.Key().Checker})
		}
	}

	if len(resp.Jobs) == 0 && len(resp.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	s.logger.Debug("check submitted",
		slog.String("document", string(doc.ID)),
		slog.Int("jobs", len(resp.Jobs)),
	)
	c.JSON(http.StatusAccepted, resp)
}

// DiagnosticsResponse is the body returned by GET /v1/diagnostics.
type DiagnosticsResponse struct {
	DocumentID  string            `json:"document_id"`
	UpdatedAt   string            `json:"updated_at"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// handleDiagnostics returns the stored batch for ?document=<id>.
func (s *Server) handleDiagnostics(c *gin.Context) {
	id := c.Query("document")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document query parameter is required"})
		return
	}

	diags, updatedAt, ok, err := s.results.Get(document.ID(id))
	if err != nil {
		s.logger.Error("diagnostics lookup failed",
			slog.String("document", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no results for document"})
		return
	}

	c.JSON(http.StatusOK, DiagnosticsResponse{
		DocumentID:  id,
		UpdatedAt:   updatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Diagnostics: diags,
	})
}

// handleDocuments lists documents with stored results.
func (s *Server) handleDocuments(c *gin.Context) {
	ids, err := s.results.Documents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

// CheckerInfo describes one configured checker.
type CheckerInfo struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	InputMode string `json:"input_mode"`
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
}

// handleCheckers lists the configured checkers and whether each one's
// executable is installed.
func (s *Server) handleCheckers(c *gin.Context) {
	available := s.checkers.DetectAvailable()

	var out []CheckerInfo
	for _, name := range s.checkers.Names() {
		cfg := s.checkers.Get(name)
		if cfg == nil {
			continue
		}
		out = append(out, CheckerInfo{
			Name:      cfg.Name,
			Command:   cfg.Command[0],
			InputMode: cfg.InputMode.String(),
			Enabled:   cfg.Enabled,
			Available: available[cfg.Name],
		})
	}
	c.JSON(http.StatusOK, gin.H{"checkers": out})
}
