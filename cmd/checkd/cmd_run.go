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
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/diagfmt"
	"github.com/AleutianAI/checkd/internal/document"
	"github.com/AleutianAI/checkd/internal/job"
)

// runRun checks the named files once and prints the results.
//
// Each file becomes one document snapshot; all checkers (or the ones
// named with --checker) run concurrently per file. The command waits
// for every job, prints compiler-style lines per file, and exits
// non-zero when any error-severity diagnostic was found.
func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.closeLog() }()

	collector := diag.NewCollectReporter()
	sup := job.NewSupervisor(a.checkers,
		job.WithReporter(collector),
		job.WithLogger(a.logger),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs := make(map[document.ID]*document.Document, len(args))
	g, gctx := errgroup.WithContext(ctx)
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", arg, err)
		}
		doc := document.New(document.ID(path), path, content, 1)
		docs[doc.ID] = doc

		g.Go(func() error {
			jobs, err := launchFor(gctx, sup, doc)
			for _, j := range jobs {
				select {
				case <-j.Done():
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Warn("some checkers failed to launch", "error", err.Error())
	}

	var all []diag.Diagnostic
	for _, id := range sortedIDs(docs) {
		doc := docs[id]
		batch, _ := collector.Get(id)
		if err := diagfmt.Write(os.Stdout, doc, batch); err != nil {
			return err
		}
		all = append(all, batch...)
	}
	if err := diagfmt.Summary(os.Stdout, all); err != nil {
		return err
	}

	for _, d := range all {
		if d.Severity == diag.SeverityError {
			return fmt.Errorf("found %d diagnostics", len(all))
		}
	}
	return nil
}

// launchFor starts the requested checkers for one document.
func launchFor(ctx context.Context, sup *job.Supervisor, doc *document.Document) ([]*job.Job, error) {
	if len(checkerNames) == 0 {
		return sup.CheckAll(ctx, doc)
	}
	var jobs []*job.Job
	for _, name := range checkerNames {
		j, err := sup.Check(ctx, doc, name)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func sortedIDs(docs map[document.ID]*document.Document) []document.ID {
	ids := make([]document.ID, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	// Stable output order for scripts that diff the results.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
