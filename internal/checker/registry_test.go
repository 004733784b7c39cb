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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	cfg := validConfig()

	require.NoError(t, r.Register(cfg))
	assert.Same(t, cfg, r.Get("demo"))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectsDuplicatesAndInvalid(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(validConfig()))

	err := r.Register(validConfig())
	assert.ErrorIs(t, err, ErrDuplicateChecker)

	bad := validConfig()
	bad.Pattern = nil
	assert.ErrorIs(t, r.Register(bad), ErrInvalidConfig)

	assert.ErrorIs(t, r.Register(nil), ErrInvalidConfig)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		cfg := validConfig()
		cfg.Name = name
		require.NoError(t, r.Register(cfg))
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())

	r.Remove("mid")
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.Equal(t, []string{"pyflakes", "ruby", "shellcheck"}, r.Names())

	for _, name := range r.Names() {
		assert.NoError(t, r.Get(name).Validate(), name)
	}
}
