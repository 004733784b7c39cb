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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath   string
	logLevel     string
	checkerNames []string
	serveAddr    string

	rootCmd = &cobra.Command{
		Use:   "checkd",
		Short: "A supervisor for running external linters against changing documents",
		Long: `checkd runs external lint tools (shellcheck, pyflakes, ...) against
document snapshots, supersedes stale runs when a newer snapshot arrives,
and reports only results that are still current.`,
	}

	runCmd = &cobra.Command{
		Use:   "run [file...]",
		Short: "Check files once and print the diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRun, // Defined in cmd_run.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory and re-check files as they change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch, // Defined in cmd_watch.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for submitting snapshots and reading results",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	checkersCmd = &cobra.Command{
		Use:   "checkers",
		Short: "List configured checkers and whether each is installed",
		RunE:  runCheckers, // Defined in cmd_checkers.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.checkd/checkd.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	runCmd.Flags().StringSliceVar(&checkerNames, "checker", nil, "run only these checkers (default: all enabled)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkersCmd)
}
