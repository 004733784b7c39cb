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
)

// Registry maps keys to their current job.
//
// Description:
//
//	The registry is the single arbiter of currency. Set is the only
//	mutator that installs jobs and is atomic with respect to the reads
//	completion handlers perform; two handlers can therefore never both
//	consider themselves current for one key.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	jobs map[Key]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[Key]*Job),
	}
}

// Set installs j as the current job for key.
//
// Outputs:
//
//	*Job - The job previously registered under key, or nil. The caller
//	owns terminating it; by the time Set returns, that job's completion
//	handler is guaranteed to observe its own obsolescence.
func (r *Registry) Set(key Key, j *Job) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.jobs[key]
	r.jobs[key] = j
	return prev
}

// Get returns the current job for key, or nil.
func (r *Registry) Get(key Key) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[key]
}

// IsCurrent reports whether j is the job currently registered for key.
func (r *Registry) IsCurrent(key Key, j *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[key] == j
}

// Remove deletes key's entry, but only if j is still current.
//
// Description:
//
//	Used by completion handlers so that finished jobs do not linger in
//	the registry. The conditional delete keeps a handler that lost a
//	supersession race from evicting its successor.
//
// Outputs:
//
//	bool - True if the entry was removed.
func (r *Registry) Remove(key Key, j *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.jobs[key] != j {
		return false
	}
	delete(r.jobs, key)
	return true
}

// Snapshot returns all currently registered jobs.
func (r *Registry) Snapshot() []*Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j)
	}
	return out
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
