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
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	cerrors "github.com/kraklabs/conveyor/internal/errors"
	"github.com/kraklabs/conveyor/internal/ui"
)

// runServe executes the 'run' CLI command: the long-lived service loop
// that alternates full and incremental crawls per the service timer,
// until a terminating signal cancels it.
func runServe(args []string, configPath string) {
	fs := pflag.NewFlagSet("run", pflag.ExitOnError)
	noColor := fs.Bool("no-color", false, "Disable colored output")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: conveyor run [options]

Runs the service loop: crawls repeatedly on the configured review
interval, alternating full and incremental passes per the service timer,
until interrupted.

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
		cerrors.Fatal(cerrors.NewConfigError("failed to load configuration", err.Error(), "check "+configPath+" for syntax errors", err), false)
	}

	fl, err := acquireLock(cfg)
	if err != nil {
		cerrors.Fatal(cerrors.NewConfigError("could not start service loop", err.Error(), "stop the other conveyor process or remove a stale lock file", err), false)
	}
	defer fl.Release()

	logger := newLogger(*debug)
	runner, err := buildRunner(cfg, logger)
	if err != nil {
		cerrors.Fatal(cerrors.NewConfigError("failed to initialize runner", err.Error(), "check extract/publish/solr configuration", err), false)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("conveyor.metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("conveyor.metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("conveyor.cli.signal.shutdown", "signal", sig.String())
		cancel()
	}()

	ui.Infof("starting service loop, review interval %s", cfg.RunSleepBetween)
	if err := runner.Serve(ctx); err != nil && ctx.Err() == nil {
		cerrors.Fatal(cerrors.NewInternalError("service loop stopped unexpectedly", err.Error(), "check logs for the failing stage", err), false)
	}
	ui.Success("service loop stopped")
}
