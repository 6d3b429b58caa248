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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	cerrors "github.com/kraklabs/conveyor/internal/errors"
	"github.com/kraklabs/conveyor/internal/output"
	"github.com/kraklabs/conveyor/internal/ui"
)

// runCrawl executes the 'crawl' CLI command: exactly one pass through
// the pipeline, then exit. cfg.PhaseList is not consulted: every phase
// runs, whatever the phase list names.
func runCrawl(args []string, configPath string) {
	fs := pflag.NewFlagSet("crawl", pflag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	quiet := fs.BoolP("quiet", "q", false, "Suppress progress output")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: conveyor crawl [options]

Runs a single crawl pass (full or incremental, decided by the service
timer) and exits.

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
		cerrors.Fatal(cerrors.NewConfigError("failed to load configuration", err.Error(), "check "+configPath+" for syntax errors", err), *jsonOutput)
	}

	fl, err := acquireLock(cfg)
	if err != nil {
		cerrors.Fatal(cerrors.NewConfigError("could not start crawl", err.Error(), "stop the other conveyor process or remove a stale lock file", err), *jsonOutput)
	}
	defer fl.Release()

	logger := newLogger(*debug)
	runner, err := buildRunner(cfg, logger)
	if err != nil {
		cerrors.Fatal(cerrors.NewConfigError("failed to initialize runner", err.Error(), "check extract/publish/solr configuration", err), *jsonOutput)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("conveyor.cli.signal.shutdown")
		cancel()
	}()

	progressCfg := newProgressConfig(*jsonOutput, *quiet, *noColor)
	spinner := newSpinner(progressCfg, "crawling")
	stop := make(chan struct{})
	if spinner != nil {
		go tickSpinner(spinner, stop)
	}

	summary, runErr := runner.RunOnce(ctx)
	close(stop)
	if spinner != nil {
		_ = spinner.Finish()
	}

	result := crawlResult{
		State:     string(runner.State()),
		Documents: summary.Documents,
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	if *jsonOutput {
		_ = output.JSON(result)
	} else {
		printCrawlResult(result)
	}

	if runErr != nil {
		os.Exit(1)
	}
}

type crawlResult struct {
	State     string `json:"state"`
	Documents int    `json:"documents"`
	Error     string `json:"error,omitempty"`
}

func printCrawlResult(r crawlResult) {
	if r.Error != "" {
		ui.Errorf("crawl %s: %s", r.State, r.Error)
		return
	}
	ui.Successf("crawl %s: %d documents", r.State, r.Documents)
}

func tickSpinner(bar interface{ Add(int) error }, stop <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}
