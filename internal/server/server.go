// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the checkd HTTP API.
//
// Endpoints:
//
//	POST /v1/check        - submit a document snapshot for checking
//	GET  /v1/diagnostics  - fetch the stored batch for a document
//	GET  /v1/documents    - list documents with stored results
//	GET  /v1/checkers     - list configured checkers
//	GET  /healthz         - liveness probe
//	GET  /metrics         - Prometheus metrics (when enabled)
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/checkd/internal/checker"
	"github.com/AleutianAI/checkd/internal/job"
	"github.com/AleutianAI/checkd/internal/store"
	"github.com/AleutianAI/checkd/internal/telemetry"
)

// Server wires the supervisor, checker registry, and result store behind
// the HTTP API.
//
// Thread Safety: Safe for concurrent use.
type Server struct {
	supervisor *job.Supervisor
	checkers   *checker.Registry
	results    *store.Store
	logger     *slog.Logger
	router     *gin.Engine
}

// New creates the API server.
//
// Inputs:
//
//	sup - Job supervisor. Must not be nil.
//	checkers - Checker registry backing /v1/checkers.
//	results - Result store backing /v1/diagnostics.
//	logger - Logger; nil uses slog.Default().
//
// Outputs:
//
//	*Server - The configured server.
//	error - Non-nil if a required dependency is missing.
func New(sup *job.Supervisor, checkers *checker.Registry, results *store.Store, logger *slog.Logger) (*Server, error) {
	if sup == nil {
		return nil, errors.New("supervisor is required")
	}
	if checkers == nil {
		return nil, errors.New("checker registry is required")
	}
	if results == nil {
		return nil, errors.New("result store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		supervisor: sup,
		checkers:   checkers,
		results:    results,
		logger:     logger.With(slog.String("component", "api_server")),
	}
	s.router = s.buildRouter()
	return s, nil
}

// Router returns the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("starting api server", slog.String("addr", addr))
	return s.router.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("checkd"))

	router.GET("/healthz", s.handleHealth)
	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/check", s.handleCheck)
		v1.GET("/diagnostics", s.handleDiagnostics)
		v1.GET("/documents", s.handleDocuments)
		v1.GET("/checkers", s.handleCheckers)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
