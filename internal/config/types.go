// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the checkd configuration file.
//
// The file is YAML. It carries daemon-level settings (server, store,
// watcher, telemetry) plus a list of checker definitions that are
// compiled into runnable checker configs at load time.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// configValidate is the validator instance for configuration types.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the root of the checkd configuration file.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Checkers defines the external linters available for launching.
	Checkers []CheckerSpec `yaml:"checkers" validate:"dive"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"` // e.g. ":8750"
}

// StoreConfig configures the diagnostics result store.
type StoreConfig struct {
	// Path is the Badger database directory. Empty selects an
	// in-memory store.
	Path string `yaml:"path"`
}

// WatchConfig configures the filesystem watcher.
type WatchConfig struct {
	// DebounceMs is the quiet period after the last write event before
	// a file is re-checked.
	DebounceMs int `yaml:"debounce_ms" validate:"omitempty,min=0"`

	// Extensions limits watching to these file extensions (with dot,
	// e.g. ".sh"). Empty means every file.
	Extensions []string `yaml:"extensions"`
}

// TelemetryConfig selects the metrics/trace exporters.
type TelemetryConfig struct {
	// Exporter is one of prometheus, stdout, none.
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=prometheus stdout none"`

	// MetricsAddr is the Prometheus scrape endpoint address, e.g. ":9464".
	MetricsAddr string `yaml:"metrics_addr"`
}

// CheckerSpec is one checker definition as written in YAML.
//
// Description:
//
//	A spec names an external command, how the document snapshot reaches
//	it (stdin pipe or temp file), and a regex that turns its output into
//	diagnostics. Capture groups are referenced by index in Groups;
//	SeverityMap translates the captured severity token into a canonical
//	severity, where "none" (or an unmapped token) drops the match.
type CheckerSpec struct {
	Name    string   `yaml:"name" validate:"required"`
	Command []string `yaml:"command" validate:"required,min=1"`

	// InputMode is "pipe" or "file".
	InputMode string `yaml:"input_mode" validate:"required,oneof=pipe file"`

	// Pattern is the diagnostic-matching regex. Compiled at load time;
	// multi-line patterns should anchor with (?m).
	Pattern string `yaml:"pattern" validate:"required"`

	Groups      GroupSpec         `yaml:"groups"`
	SeverityMap map[string]string `yaml:"severity_map" validate:"omitempty,dive,oneof=none info warning error"`

	// Severity is the fixed severity used when Groups.Severity is 0.
	Severity string `yaml:"severity" validate:"omitempty,oneof=none info warning error"`

	// TimeoutMs kills a run after this many milliseconds. 0 means no
	// timeout.
	TimeoutMs int  `yaml:"timeout_ms" validate:"omitempty,min=0"`
	Enabled   bool `yaml:"enabled"`
}

// GroupSpec maps capture-group indexes to diagnostic fields. 0 means
// the field is not captured.
type GroupSpec struct {
	Line     int `yaml:"line" validate:"omitempty,min=1"`
	Column   int `yaml:"column" validate:"omitempty,min=1"`
	Severity int `yaml:"severity" validate:"omitempty,min=1"`
	Message  int `yaml:"message" validate:"omitempty,min=1"`
	Rule     int `yaml:"rule" validate:"omitempty,min=1"`
}

// Timeout returns the configured timeout as a duration.
func (s CheckerSpec) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server:   ServerConfig{Addr: ":8750"},
		Watch: WatchConfig{
			DebounceMs: 300,
			Extensions: []string{".sh", ".bash", ".py", ".rb"},
		},
		Telemetry: TelemetryConfig{
			Exporter:    "prometheus",
			MetricsAddr: ":9464",
		},
		Checkers: []CheckerSpec{
			{
				Name:      "shellcheck",
				Command:   []string{"shellcheck", "-f", "gcc", "-"},
				InputMode: "pipe",
				Pattern:   `(?m)^.*?:(\d+):(\d+): (error|warning|note): (.*?)(?: \[(SC\d+)\])?$`,
				Groups:    GroupSpec{Line: 1, Column: 2, Severity: 3, Message: 4, Rule: 5},
				SeverityMap: map[string]string{
					"error":   "error",
					"warning": "warning",
					"note":    "info",
				},
				Enabled: true,
			},
			{
				Name:      "pyflakes",
				Command:   []string{"pyflakes", "{file}"},
				InputMode: "file",
				Pattern:   `(?m)^.*?:(\d+):(?:(\d+):)? (.*)$`,
				Groups:    GroupSpec{Line: 1, Column: 2, Message: 3},
				Severity:  "warning",
				Enabled:   true,
			},
		},
	}
}
