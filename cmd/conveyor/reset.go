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
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/kraklabs/conveyor/internal/lock"
	"github.com/kraklabs/conveyor/internal/ui"
)

// runReset executes the 'reset' CLI command: discards all crawl residue
// under the configured working directory, including the persisted
// service timer. Refuses to run while a crawl holds the lock file.
func runReset(args []string, configPath string) {
	fs := pflag.NewFlagSet("reset", pflag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: conveyor reset [options]

Deletes the working directory's crawl residue and resets the service
timer so the next crawl starts full.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	ui.InitColors(*noColor)

	if !*confirm {
		ui.Error("you must pass --yes to confirm the reset")
		os.Exit(1)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}

	fl := lock.New(filepath.Join(cfg.WorkingDir, "conveyor.lock"))
	if holder, err := fl.Holder(); err == nil && holder != nil && !fl.IsStale() {
		ui.Errorf("refusing to reset: crawl running (pid %d, started %s)", holder.PID, holder.StartedAt)
		os.Exit(1)
	}

	if _, err := os.Stat(cfg.WorkingDir); os.IsNotExist(err) {
		ui.Infof("nothing to reset: %s does not exist", cfg.WorkingDir)
		return
	}

	if err := os.RemoveAll(cfg.WorkingDir); err != nil {
		ui.Errorf("failed to delete %s: %v", cfg.WorkingDir, err)
		os.Exit(1)
	}

	ui.Successf("reset complete: deleted %s", cfg.WorkingDir)
}
