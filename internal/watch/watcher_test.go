// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/checkd/internal/document"
)

// recorder collects checked snapshots.
type recorder struct {
	mu   sync.Mutex
	docs []*document.Document
}

func (r *recorder) check(_ context.Context, doc *document.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

func (r *recorder) snapshots() []*document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*document.Document, len(r.docs))
	copy(out, r.docs)
	return out
}

func (r *recorder) forPath(path string) []*document.Document {
	var out []*document.Document
	for _, d := range r.snapshots() {
		if d.Path == path {
			out = append(out, d)
		}
	}
	return out
}

func startWatcher(t *testing.T, root string, rec *recorder, opts *Options) *Watcher {
	t.Helper()
	if opts == nil {
		opts = &Options{DebounceWindow: 50 * time.Millisecond}
	}
	w, err := New(root, rec.check, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_ChecksChangedFile(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, nil)

	path := filepath.Join(root, "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo hi\n"), 0644))

	require.Eventually(t, func() bool {
		return len(rec.forPath(path)) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	docs := rec.forPath(path)
	assert.Equal(t, []byte("echo hi\n"), docs[0].Content)
	assert.Equal(t, document.ID(path), docs[0].ID)
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, &Options{DebounceWindow: 150 * time.Millisecond})

	path := filepath.Join(root, "busy.sh")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("echo draft\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(rec.forPath(path)) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	// Allow a straggler window, then confirm the burst collapsed.
	time.Sleep(300 * time.Millisecond)
	assert.LessOrEqual(t, len(rec.forPath(path)), 2,
		"a burst of writes must not launch a check per write")
}

func TestWatcher_VersionsIncreasePerPath(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, nil)

	path := filepath.Join(root, "v.sh")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0644))
	require.Eventually(t, func() bool { return len(rec.forPath(path)) >= 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0644))
	require.Eventually(t, func() bool { return len(rec.forPath(path)) >= 2 }, 5*time.Second, 20*time.Millisecond)

	docs := rec.forPath(path)
	assert.Less(t, docs[0].Version, docs[1].Version)
	assert.Equal(t, []byte("two\n"), docs[len(docs)-1].Content)
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, &Options{
		DebounceWindow: 50 * time.Millisecond,
		Extensions:     []string{".sh"},
	})

	wanted := filepath.Join(root, "keep.sh")
	ignored := filepath.Join(root, "skip.log")
	require.NoError(t, os.WriteFile(ignored, []byte("noise\n"), 0644))
	require.NoError(t, os.WriteFile(wanted, []byte("echo\n"), 0644))

	require.Eventually(t, func() bool {
		return len(rec.forPath(wanted)) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Empty(t, rec.forPath(ignored))
}

func TestWatcher_PicksUpNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec, nil)

	sub := filepath.Join(root, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher a beat to register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "inner.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo deep\n"), 0644))

	require.Eventually(t, func() bool {
		return len(rec.forPath(path)) >= 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	w := startWatcher(t, root, rec, nil)

	w.Stop()
	w.Stop()
}
