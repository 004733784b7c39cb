// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists the latest diagnostics batch per document.
//
// Backed by BadgerDB for low-latency embedded storage. Each Put replaces
// the document's previous batch; the job supervisor's currency check
// guarantees batches arrive in supersession order, so last-write-wins is
// the correct merge rule.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/checkd/internal/diag"
	"github.com/AleutianAI/checkd/internal/document"
)

// keyPrefix namespaces diagnostics records in the key space.
const keyPrefix = "diag:v1:"

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration for the result store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing and for running without a configured path.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults for the given path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns configuration for an ephemeral store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// =============================================================================
// STORE
// =============================================================================

// record is the stored value for one document.
type record struct {
	UpdatedAt   time.Time         `json:"updated_at"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// Store is a BadgerDB-backed diagnostics store.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates and opens a result store.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if the path is invalid or the database cannot open.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "result_store")),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put replaces the stored batch for a document.
//
// An empty (non-nil) batch is stored like any other; "this document has
// no issues" is a result, not an absence of one.
func (s *Store) Put(doc document.ID, diags []diag.Diagnostic) error {
	if diags == nil {
		diags = []diag.Diagnostic{}
	}
	value, err := json.Marshal(record{
		UpdatedAt:   time.Now().UTC(),
		Diagnostics: diags,
	})
	if err != nil {
		return fmt.Errorf("encode diagnostics for %s: %w", doc, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(doc), value)
	})
	if err != nil {
		return fmt.Errorf("store diagnostics for %s: %w", doc, err)
	}
	return nil
}

// Get returns the stored batch for a document.
//
// Outputs:
//
//	[]diag.Diagnostic - The batch. Empty slice if the stored batch is
//	empty.
//	time.Time - When the batch was stored.
//	bool - False if the document has no stored batch.
//	error - Non-nil on a storage or decode failure.
func (s *Store) Get(doc document.ID) ([]diag.Diagnostic, time.Time, bool, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(doc))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("load diagnostics for %s: %w", doc, err)
	}
	if rec.Diagnostics == nil {
		rec.Diagnostics = []diag.Diagnostic{}
	}
	return rec.Diagnostics, rec.UpdatedAt, true, nil
}

// Delete removes the stored batch for a document. Deleting an absent
// document is not an error.
func (s *Store) Delete(doc document.ID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(doc))
	})
	if err != nil {
		return fmt.Errorf("delete diagnostics for %s: %w", doc, err)
	}
	return nil
}

// Documents lists every document with a stored batch.
func (s *Store) Documents() ([]document.ID, error) {
	var ids []document.ID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			ids = append(ids, document.ID(k[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return ids, nil
}

func key(doc document.ID) []byte {
	return []byte(keyPrefix + string(doc))
}

// =============================================================================
// REPORTER ADAPTER
// =============================================================================

// Reporter adapts the store to the diag.Reporter interface.
//
// Description:
//
//	Lets the job supervisor report straight into persistence. Report has
//	no error return, so storage failures are logged and dropped; the log
//	reporter usually chained alongside still carries the results.
func (s *Store) Reporter() diag.Reporter {
	return diag.ReporterFunc(func(doc document.ID, diags []diag.Diagnostic) {
		if err := s.Put(doc, diags); err != nil {
			s.logger.Error("failed to persist diagnostics",
				slog.String("document", string(doc)),
				slog.Int("count", len(diags)),
				slog.String("error", err.Error()),
			)
		}
	})
}
