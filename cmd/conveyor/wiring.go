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
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/conveyor/internal/config"
	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/extract"
	"github.com/kraklabs/conveyor/internal/ids"
	"github.com/kraklabs/conveyor/internal/lock"
	"github.com/kraklabs/conveyor/internal/notify"
	"github.com/kraklabs/conveyor/internal/pipeline"
	"github.com/kraklabs/conveyor/internal/publish"
	"github.com/kraklabs/conveyor/internal/servicetimer"
	"github.com/kraklabs/conveyor/internal/solr"
	"github.com/kraklabs/conveyor/internal/stages"
	"github.com/kraklabs/conveyor/internal/taskrunner"
)

// acquireLock takes the connector's single-instance file lock, so two
// conveyor processes against the same working directory never crawl
// concurrently. The lock is process-wide, covering both "crawl" and
// "run" invocations.
func acquireLock(cfg config.Config) (*lock.FileLock, error) {
	if err := os.MkdirAll(cfg.WorkingDir, 0o750); err != nil {
		return nil, fmt.Errorf("create working dir: %w", err)
	}
	fl := lock.New(filepath.Join(cfg.WorkingDir, "conveyor.lock"))
	ok, err := fl.TryAcquire()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		holder, _ := fl.Holder()
		if holder != nil {
			return nil, fmt.Errorf("another conveyor process is already running (pid %d, started %s)", holder.PID, holder.StartedAt)
		}
		return nil, fmt.Errorf("another conveyor process is already running")
	}
	return fl, nil
}

// buildRegistryFactory resolves cfg.Publish.PipeLine against the one
// built-in publisher kind this connector ships: a Solr-compatible index
// client. Additional publisher kinds (a second index, a file sink) would
// be registered here by name.
func buildRegistryFactory(cfg config.Config, cq *crawlqueue.CrawlQueue) stages.RegistryFactory {
	return func() (*publish.Registry, error) {
		var arch *publish.Archiver
		if cfg.Publish.SaveFiles {
			arch = publish.NewArchiver(cq, nil)
		}

		factories := map[string]func() *publish.BatchPublisher{
			"solr": func() *publish.BatchPublisher {
				client := solr.New(cfg.Solr.URL, time.Duration(cfg.Solr.TimeoutSecs)*time.Second)
				return publish.New("solr", client, publish.Config{
					BatchSize:       cfg.Publish.BatchSize(),
					CommitEvery:     cfg.Publish.CommitEvery(),
					MaxDocs:         cfg.Publish.MaxDocs(),
					UploadEnabled:   cfg.Publish.UploadEnabled,
					Archive:         cfg.Publish.SaveFiles,
					OptimizeOnClose: cfg.Publish.OptimizeUponCompletion,
				}, arch)
			},
		}
		return publish.NewRegistry(cfg.Publish.PipeLine, factories)
	}
}

// buildDriverFactory returns the filesystem driver this connector ships.
// A web-crawl or network-share driver would be selected here by a config
// field; spec.md treats that selection as out of scope for the core.
func buildDriverFactory(cfg config.Config, logger *slog.Logger) (taskrunner.DriverFactory, error) {
	followIgnore, err := extract.NewFollowIgnore(cfg.Extract.Follow, cfg.Extract.Ignore)
	if err != nil {
		return nil, fmt.Errorf("compile follow/ignore patterns: %w", err)
	}

	return func(_ crawlqueue.CrawlType, _ time.Time) extract.Driver {
		return &extract.FilesystemDriver{
			StartLocations: cfg.Extract.StartLocations,
			FollowIgnore:   followIgnore,
			Parser:         &extract.PlainTextParser{},
			MaxDocs:        cfg.Extract.CrawlMaxPages,
			Logger:         logger,
		}
	}, nil
}

// buildRunner assembles a taskrunner.Runner from cfg. The CrawlQueue and
// ServiceTimer are long-lived, process-wide collaborators; everything
// else RunOnce builds fresh per crawl via the factories here.
func buildRunner(cfg config.Config, logger *slog.Logger) (*taskrunner.Runner, error) {
	cq := crawlqueue.New(cfg.WorkingDir, nil)

	timer, err := servicetimer.Load(cfg.ServiceStatePath(), cfg.FullInterval(), cfg.IncrementalInterval())
	if err != nil {
		return nil, fmt.Errorf("load service timer: %w", err)
	}

	driverFactory, err := buildDriverFactory(cfg, logger)
	if err != nil {
		return nil, err
	}

	reviewInterval, err := cfg.ReviewInterval()
	if err != nil {
		return nil, fmt.Errorf("run_sleep_between: %w", err)
	}

	return &taskrunner.Runner{
		CrawlQueue:      cq,
		Encoder:         ids.NewIdentityEncoder(cfg.Extract.IDValuePrefix),
		Timer:           timer,
		Pipeline:        pipeline.New(),
		RegistryFactory: buildRegistryFactory(cfg, cq),
		DriverFactory:   driverFactory,
		Notifier:        notify.NewLogNotifier(logger),
		Queues: taskrunner.QueueSizes{
			Extract:   cfg.Extract.Queue.Length,
			Transform: cfg.Transform.Length,
			Publish:   cfg.Publish.Queue.Length,
		},
		Workers: taskrunner.WorkerCounts{
			Transform: cfg.Transform.ThreadCount,
			Publish:   cfg.Publish.Queue.ThreadCount,
		},
		PollTimeout:    cfg.PollTimeout(),
		ReviewInterval: reviewInterval,
		StartupDelay:   time.Duration(cfg.RunSleepStartupDelay) * time.Minute,
		Logger:         logger,
	}, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	return logger
}
