// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/checkd/internal/diag"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleBatch(checker string, n int) []diag.Diagnostic {
	batch := make([]diag.Diagnostic, n)
	for i := range batch {
		batch[i] = diag.Diagnostic{
			Severity: diag.SeverityWarning,
			Message:  "issue",
			Checker:  checker,
			Start:    i * 10,
			End:      i*10 + 5,
		}
	}
	return batch
}

func TestStore_PutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("doc-a", sampleBatch("chk", 3)))

	got, updatedAt, ok, err := s.Get("doc-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 3)
	assert.Equal(t, "chk", got[0].Checker)
	assert.False(t, updatedAt.IsZero())
}

func TestStore_GetMissingDocument(t *testing.T) {
	s := openTestStore(t)

	got, _, ok, err := s.Get("never-stored")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_PutReplacesPreviousBatch(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("doc-a", sampleBatch("chk", 5)))
	require.NoError(t, s.Put("doc-a", sampleBatch("chk", 1)))

	got, _, ok, err := s.Get("doc-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 1, "latest batch wins")
}

func TestStore_EmptyBatchIsAResult(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("doc-a", sampleBatch("chk", 2)))
	require.NoError(t, s.Put("doc-a", nil))

	got, _, ok, err := s.Get("doc-a")
	require.NoError(t, err)
	require.True(t, ok, "a clean result is stored, not erased")
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStore_DeleteAndDocuments(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("doc-a", sampleBatch("chk", 1)))
	require.NoError(t, s.Put("doc-b", sampleBatch("chk", 1)))

	ids, err := s.Documents()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"doc-a", "doc-b"}, toStrings(ids))

	require.NoError(t, s.Delete("doc-a"))
	require.NoError(t, s.Delete("doc-a"), "double delete is fine")

	_, _, ok, err := s.Get("doc-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReporterPersists(t *testing.T) {
	s := openTestStore(t)

	s.Reporter().Report("doc-a", sampleBatch("chk", 2))

	got, _, ok, err := s.Get("doc-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
