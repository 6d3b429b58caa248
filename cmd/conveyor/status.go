// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kraklabs/conveyor/internal/output"
	"github.com/kraklabs/conveyor/internal/servicetimer"
	"github.com/kraklabs/conveyor/internal/ui"
)

// StatusResult is the machine-readable rendering of the connector's
// service-timer status. It carries no crawl-queue state.
type StatusResult struct {
	WorkingDir       string    `json:"working_dir"`
	LastFull         time.Time `json:"last_full"`
	LastIncremental  time.Time `json:"last_incremental"`
	FullDue          bool      `json:"full_due"`
	IncrementalDue   bool      `json:"incremental_due"`
	FullIntervalMins int       `json:"full_interval_minutes"`
	IncrementalMins  int       `json:"incremental_interval_minutes"`
	Error            string    `json:"error,omitempty"`
}

// runStatus executes the 'status' CLI command, reporting what crawl the
// service timer would decide to run next without starting one.
func runStatus(args []string, configPath string) {
	fs := pflag.NewFlagSet("status", pflag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: conveyor status [options]

Shows the service timer's state: when the last full and incremental
crawls started, and whether either is due now.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	ui.InitColors(*noColor)

	cfg, err := loadConfig(configPath)
	if err != nil {
		if *jsonOutput {
			_ = output.JSON(StatusResult{Error: err.Error()})
		} else {
			ui.Error(err.Error())
		}
		os.Exit(1)
	}

	timer, err := servicetimer.Load(cfg.ServiceStatePath(), cfg.FullInterval(), cfg.IncrementalInterval())
	if err != nil {
		if *jsonOutput {
			_ = output.JSON(StatusResult{WorkingDir: cfg.WorkingDir, Error: err.Error()})
		} else {
			ui.Error(err.Error())
		}
		os.Exit(1)
	}

	now := time.Now()
	result := StatusResult{
		WorkingDir:       cfg.WorkingDir,
		LastFull:         timer.LastFull(),
		LastIncremental:  timer.LastIncremental(),
		FullDue:          timer.FullDue(now),
		IncrementalDue:   timer.IncrementalDue(now),
		FullIntervalMins: cfg.FullIntervalMinutes,
		IncrementalMins:  cfg.IncrementalIntervalMinutes,
	}

	if *jsonOutput {
		_ = output.JSON(result)
		return
	}
	printStatus(result)
}

func printStatus(r StatusResult) {
	ui.Header("conveyor status")
	fmt.Printf("%s %s\n", ui.Label("working dir:"), r.WorkingDir)
	fmt.Printf("%s %s (due: %v)\n", ui.Label("last full:"), formatTime(r.LastFull), r.FullDue)
	fmt.Printf("%s %s (due: %v)\n", ui.Label("last incremental:"), formatTime(r.LastIncremental), r.IncrementalDue)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
