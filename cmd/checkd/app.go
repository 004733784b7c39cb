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
	"fmt"
	"log/slog"

	"github.com/AleutianAI/checkd/internal/checker"
	"github.com/AleutianAI/checkd/internal/config"
	"github.com/AleutianAI/checkd/internal/logging"
)

// app holds the dependencies commands build from the config file.
type app struct {
	cfg      *config.Config
	checkers *checker.Registry
	logger   *slog.Logger
	closeLog func() error
}

// newApp loads the config and assembles the shared dependencies.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger, closeLog, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(level),
		Service: "checkd",
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	checkers, err := config.BuildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("building checker registry: %w", err)
	}

	return &app{cfg: cfg, checkers: checkers, logger: logger, closeLog: closeLog}, nil
}
