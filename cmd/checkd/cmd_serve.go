// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/job"
	"github.com/AleutianAI/checkd/internal/server"
	"github.com/AleutianAI/checkd/internal/store"
	"github.com/AleutianAI/checkd/internal/telemetry"
)

// runServe starts the HTTP API with the configured result store and
// telemetry exporters.
func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.closeLog() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	telemetryCfg := telemetry.DefaultConfig()
	if a.cfg.Telemetry.Exporter != "" {
		telemetryCfg.MetricExporter = a.cfg.Telemetry.Exporter
	}
	shutdownTelemetry, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	storeCfg := store.InMemoryConfig()
	if a.cfg.Store.Path != "" {
		storeCfg = store.DefaultConfig(a.cfg.Store.Path)
	}
	storeCfg.Logger = a.logger
	results, err := store.Open(storeCfg)
	if err != nil {
		return err
	}
	defer func() { _ = results.Close() }()

	sup := job.NewSupervisor(a.checkers,
		job.WithReporter(diag.MultiReporter{
			results.Reporter(),
			diag.NewLogReporter(a.logger),
		}),
		job.WithLogger(a.logger),
	)
	defer func() { _ = sup.Shutdown(context.Background()) }()

	srv, err := server.New(sup, a.checkers, results, a.logger)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	if addr == "" {
		addr = ":8750"
	}
	return srv.Run(addr)
}
