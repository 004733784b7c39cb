// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package job

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/checkd/internal/document"
)

func testKey(doc, chk string) Key {
	return Key{DocumentID: document.ID(doc), Checker: chk}
}

func newTestJob(key Key) *Job {
	return &Job{id: "job-" + key.String(), key: key, done: make(chan struct{})}
}

func TestRegistry_SetReturnsPrevious(t *testing.T) {
	r := NewRegistry()
	key := testKey("a", "chk")

	first := newTestJob(key)
	require.Nil(t, r.Set(key, first), "empty slot has no previous job")

	second := newTestJob(key)
	assert.Same(t, first, r.Set(key, second))
	assert.Same(t, second, r.Get(key))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_IsCurrent(t *testing.T) {
	r := NewRegistry()
	key := testKey("a", "chk")

	first := newTestJob(key)
	r.Set(key, first)
	assert.True(t, r.IsCurrent(key, first))

	second := newTestJob(key)
	r.Set(key, second)
	assert.False(t, r.IsCurrent(key, first), "superseded job is not current")
	assert.True(t, r.IsCurrent(key, second))

	assert.False(t, r.IsCurrent(testKey("b", "chk"), second), "wrong key is never current")
}

func TestRegistry_RemoveOnlyIfCurrent(t *testing.T) {
	r := NewRegistry()
	key := testKey("a", "chk")

	first := newTestJob(key)
	second := newTestJob(key)
	r.Set(key, first)
	r.Set(key, second)

	assert.False(t, r.Remove(key, first), "obsolete job must not evict its successor")
	assert.Same(t, second, r.Get(key))

	assert.True(t, r.Remove(key, second))
	assert.Nil(t, r.Get(key))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_KeysAreIndependent(t *testing.T) {
	r := NewRegistry()
	keyA := testKey("a", "chk")
	keyB := testKey("b", "chk")
	keyC := testKey("a", "other")

	jobA := newTestJob(keyA)
	jobB := newTestJob(keyB)
	jobC := newTestJob(keyC)
	r.Set(keyA, jobA)
	r.Set(keyB, jobB)
	r.Set(keyC, jobC)

	assert.Equal(t, 3, r.Len())
	assert.True(t, r.IsCurrent(keyA, jobA))
	assert.True(t, r.IsCurrent(keyB, jobB))
	assert.True(t, r.IsCurrent(keyC, jobC))

	r.Set(keyA, newTestJob(keyA))
	assert.True(t, r.IsCurrent(keyB, jobB), "supersession on one key must not touch others")
	assert.True(t, r.IsCurrent(keyC, jobC))
}

func TestRegistry_ConcurrentSetAndCheck(t *testing.T) {
	r := NewRegistry()
	key := testKey("a", "chk")

	var wg sync.WaitGroup
	jobs := make([]*Job, 32)
	for i := range jobs {
		jobs[i] = newTestJob(key)
	}

	for _, j := range jobs {
		wg.Add(1)
		go func(j *Job) {
			defer wg.Done()
			r.Set(key, j)
			r.IsCurrent(key, j)
		}(j)
	}
	wg.Wait()

	// Exactly one of the contenders won; currency is exclusive.
	current := 0
	for _, j := range jobs {
		if r.IsCurrent(key, j) {
			current++
		}
	}
	assert.Equal(t, 1, current)
}
