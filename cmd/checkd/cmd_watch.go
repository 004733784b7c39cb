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
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/diagfmt"
	"github.com/AleutianAI/checkd/internal/document"
	"github.com/AleutianAI/checkd/internal/job"
	"github.com/AleutianAI/checkd/internal/watch"
)

// runWatch re-checks files in a directory as they change, printing each
// file's diagnostics to stdout as results arrive. Runs until
// interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.closeLog() }()

	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}

	// The reporter carries only the document id, so the latest snapshot
	// per document is kept here for position rendering. Only current
	// jobs report, and a current job's snapshot is the latest one, so
	// the lookup always matches the content that produced the batch.
	var mu sync.Mutex
	snapshots := make(map[document.ID]*document.Document)

	printer := diag.ReporterFunc(func(id document.ID, diags []diag.Diagnostic) {
		mu.Lock()
		doc := snapshots[id]
		mu.Unlock()
		if doc == nil {
			return
		}
		_ = diagfmt.Write(os.Stdout, doc, diags)
	})

	sup := job.NewSupervisor(a.checkers,
		job.WithReporter(diag.MultiReporter{printer, diag.NewLogReporter(a.logger)}),
		job.WithLogger(a.logger),
	)

	check := func(ctx context.Context, doc *document.Document) {
		mu.Lock()
		snapshots[doc.ID] = doc
		mu.Unlock()
		if _, err := sup.CheckAll(ctx, doc); err != nil {
			a.logger.Warn("launch failures", "path", doc.Path, "error", err.Error())
		}
	}

	opts := watch.DefaultOptions()
	opts.Logger = a.logger
	if a.cfg.Watch.DebounceMs > 0 {
		opts.DebounceWindow = time.Duration(a.cfg.Watch.DebounceMs) * time.Millisecond
	}
	opts.Extensions = a.cfg.Watch.Extensions

	watcher, err := watch.New(root, check, &opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	a.logger.Info("watching", "root", root)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sup.Shutdown(shutdownCtx)
}
