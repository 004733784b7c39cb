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
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	availableColor = color.New(color.FgGreen)
	missingColor   = color.New(color.FgRed)
	disabledColor  = color.New(color.Faint)
)

// runCheckers prints the configured checkers with availability.
func runCheckers(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.closeLog() }()

	available := a.checkers.DetectAvailable()
	for _, name := range a.checkers.Names() {
		cfg := a.checkers.Get(name)
		if cfg == nil {
			continue
		}

		status := availableColor.Sprint("available")
		if !available[name] {
			status = missingColor.Sprint("not installed")
		}
		label := name
		if !cfg.Enabled {
			label = disabledColor.Sprintf("%s (disabled)", name)
		}
		fmt.Printf("%-24s %-14s %s (%s input)\n",
			label, status, strings.Join(cfg.Command, " "), cfg.InputMode)
	}
	return nil
}
