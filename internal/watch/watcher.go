// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-checks files as they change on disk.
//
// A recursive fsnotify watcher feeds a debouncer; when a file stops
// changing for the debounce window, its current content is snapshotted
// into a document and handed to the check function. Rapid successive
// writes therefore launch one check, and the job supervisor's
// supersession handles the case where a slow check is still running when
// the next snapshot arrives.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/checkd/internal/document"
)

// CheckFunc receives the snapshot of a changed file.
//
// The production implementation launches supervisor.CheckAll; tests
// substitute a recorder.
type CheckFunc func(ctx context.Context, doc *document.Document)

// Options configures the Watcher.
type Options struct {
	// DebounceWindow is how long a file must stay quiet before it is
	// re-checked. Default: 300ms.
	DebounceWindow time.Duration

	// Extensions limits checking to these file extensions (with dot).
	// Empty means every file.
	Extensions []string

	// IgnorePatterns are names/glob patterns for files and directories
	// to skip entirely.
	IgnorePatterns []string

	// BufferSize is the size of the change event channel. Default: 1000.
	BufferSize int

	// Logger for watcher events. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 300 * time.Millisecond,
		IgnorePatterns: []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "__pycache__"},
		BufferSize:     1000,
	}
}

// Watcher watches a directory tree and re-checks files on change.
//
// Thread Safety: Safe for concurrent use. The check function is called
// from a single goroutine.
type Watcher struct {
	root       string
	watcher    *fsnotify.Watcher
	check      CheckFunc
	debounce   time.Duration
	extensions map[string]bool
	ignore     []string
	logger     *slog.Logger

	changes  chan string
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool
	versions map[string]int64
}

// New creates a watcher over root.
//
// Inputs:
//
//	root - Directory to watch, recursively.
//	check - Called with a snapshot of each settled file.
//	opts - Optional configuration (nil uses DefaultOptions).
//
// Outputs:
//
//	*Watcher - Ready-to-use watcher; call Start to begin.
//	error - Non-nil if the underlying fsnotify watcher cannot be created.
func New(root string, check CheckFunc, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = 300 * time.Millisecond
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[ext] = true
	}

	return &Watcher{
		root:       root,
		watcher:    fsw,
		check:      check,
		debounce:   opts.DebounceWindow,
		extensions: extensions,
		ignore:     opts.IgnorePatterns,
		logger:     logger.With(slog.String("component", "file_watcher")),
		changes:    make(chan string, opts.BufferSize),
		done:       make(chan struct{}),
		versions:   make(map[string]int64),
	}, nil
}

// Start begins watching for file changes.
//
// Description:
//
//	Recursively watches root and all subdirectories. Spawns two
//	goroutines, an event processor and a debouncer; both exit when Stop
//	is called or ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("watching for changes",
		slog.String("root", w.root),
		slog.Duration("debounce", w.debounce),
	)
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// addRecursive adds a directory and all subdirectories to the watch list.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// shouldIgnore checks if a path matches any ignore pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(path, string(filepath.Separator)+pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// wantsFile checks the extension filter.
func (w *Watcher) wantsFile(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[filepath.Ext(path)]
}

// processEvents forwards relevant fsnotify events to the debouncer.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			// New directories join the watch set.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
					continue
				}
			}

			// Only content-bearing events schedule a check; removes and
			// renames leave the stored diagnostics as-is.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.wantsFile(event.Name) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				w.logger.Warn("change buffer full, dropping event",
					slog.String("path", event.Name))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// debounceLoop batches changed paths and checks them after the window.
func (w *Watcher) debounceLoop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for path := range pending {
			w.checkFile(ctx, path)
		}
		clear(pending)
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case path := <-w.changes:
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// checkFile snapshots one file and hands it to the check function.
//
// The version counter increments per path so downstream consumers can
// tell snapshots of the same file apart.
func (w *Watcher) checkFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		// The file may have been deleted between the event and the
		// flush.
		w.logger.Debug("skipping unreadable file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	w.mu.Lock()
	w.versions[path]++
	version := w.versions[path]
	w.mu.Unlock()

	doc := document.New(document.ID(path), path, content, version)
	w.logger.Debug("file settled, checking",
		slog.String("path", path),
		slog.Int64("version", version),
	)
	w.check(ctx, doc)
}
