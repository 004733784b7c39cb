// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package checker

import (
	"fmt"
	"os/exec"
	"sort"
	"sync"
)

// Registry manages checker configurations by name.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]*Config),
	}
}

// Register adds a checker configuration.
//
// Description:
//
//	Validates the config and installs it under its name. Registration is
//	the whole integration surface for a checker author: once registered,
//	the supervisor can launch it against any document.
//
// Inputs:
//
//	cfg - The configuration. Not copied; treat as immutable afterwards.
//
// Outputs:
//
//	error - Non-nil if the config is invalid or the name is taken.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Register(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, cfg.Name)
	}
	r.configs[cfg.Name] = cfg
	return nil
}

// Get returns the config registered under name, or nil.
func (r *Registry) Get(name string) *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configs[name]
}

// Remove deletes the config registered under name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, name)
}

// Names returns all registered checker names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered checkers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}

// DetectAvailable probes the system PATH for every registered checker.
//
// Description:
//
//	Returns a map of checker name to whether its binary was found.
//	Purely informational; launching an unavailable checker fails at
//	process start and is handled there.
//
// Outputs:
//
//	map[string]bool - Checker name to availability.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) DetectAvailable() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]bool, len(r.configs))
	for name, cfg := range r.configs {
		_, err := exec.LookPath(cfg.Command[0])
		result[name] = err == nil
	}
	return result
}
