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

// Package taskrunner supervises one connector run: it checks readiness,
// starts the four pipeline stages in dependency order, joins them as the
// crawl-finish marker propagates, persists the service timer, and loops
// on the configured review interval in service mode.
package taskrunner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
	"github.com/kraklabs/conveyor/internal/extract"
	"github.com/kraklabs/conveyor/internal/ids"
	"github.com/kraklabs/conveyor/internal/notify"
	"github.com/kraklabs/conveyor/internal/pipeline"
	"github.com/kraklabs/conveyor/internal/publish"
	"github.com/kraklabs/conveyor/internal/queue"
	"github.com/kraklabs/conveyor/internal/servicetimer"
	"github.com/kraklabs/conveyor/internal/stages"
)

// State is the per-crawl state machine's current position.
type State string

const (
	Idle      State = "idle"
	Starting  State = "starting"
	Running   State = "running"
	Draining  State = "draining"
	Completed State = "completed"
	Failed    State = "failed"
	Aborted   State = "aborted"
)

// DriverFactory builds the extract driver for one crawl, given its type
// and incremental watermark.
type DriverFactory func(crawlType crawlqueue.CrawlType, watermark time.Time) extract.Driver

// QueueSizes configures the three inter-stage queue capacities.
type QueueSizes struct {
	Extract   int
	Transform int
	Publish   int
}

// WorkerCounts configures the transform and publish stages' worker-pool
// sizes.
type WorkerCounts struct {
	Transform int
	Publish   int
}

// Runner is the top-level supervisor. It owns no long-lived workers of
// its own; each call to RunOnce constructs a fresh set of queues and
// stages for that crawl, per the resource-lifecycle contract ("queues
// are created before any worker and destroyed after all workers exit").
type Runner struct {
	CrawlQueue      *crawlqueue.CrawlQueue
	Encoder         *ids.IdentityEncoder
	Timer           *servicetimer.Timer
	Pipeline        *pipeline.TransformPipeline
	RegistryFactory stages.RegistryFactory
	DriverFactory   DriverFactory
	Notifier        notify.Notifier

	Queues      QueueSizes
	Workers     WorkerCounts
	PollTimeout time.Duration

	ReviewInterval time.Duration
	StartupDelay   time.Duration

	Logger *slog.Logger

	state State
}

// State returns the runner's current crawl state.
func (r *Runner) State() State { return r.state }

// Readiness checks the preconditions spec.md §4.8 requires before any
// crawl may start: the transform pipeline validates and at least one
// registry built from RegistryFactory validates. A failure here is a
// configuration error: it is notified and no crawl starts.
func (r *Runner) Readiness() error {
	if err := r.Pipeline.Validate(); err != nil {
		return fmt.Errorf("taskrunner: readiness: transform pipeline: %w", err)
	}
	registry, err := r.RegistryFactory()
	if err != nil {
		return fmt.Errorf("taskrunner: readiness: registry: %w", err)
	}
	if err := registry.Validate(); err != nil {
		return fmt.Errorf("taskrunner: readiness: registry: %w", err)
	}
	return nil
}

// RunOnce executes exactly one crawl: readiness check, crawl-type
// decision from the service timer, stage startup in dependency order,
// join in completion order, and timer persistence on success.
func (r *Runner) RunOnce(ctx context.Context) (stages.CrawlSummary, error) {
	logger := r.logger()
	r.state = Starting

	if err := r.Readiness(); err != nil {
		r.state = Failed
		r.Notifier.ReadinessFailed(err.Error(), err)
		return stages.CrawlSummary{}, err
	}

	crawlType, watermark := r.decideCrawlType(time.Now())
	startedAt := time.Now()

	crawlID, err := r.CrawlQueue.Start(crawlType, watermark)
	if err != nil {
		r.state = Failed
		return stages.CrawlSummary{}, fmt.Errorf("taskrunner: start crawl: %w", err)
	}
	logger.Info("conveyor.taskrunner.crawl.starting", "crawl_id", crawlID, "type", crawlType, "watermark", watermark)

	extractQueue := queue.NewBoundedQueue[document.QueueItem](r.Queues.Extract)
	transformQueue := queue.NewBoundedQueue[document.QueueItem](r.Queues.Transform)
	publishQueue := queue.NewBoundedQueue[document.QueueItem](r.Queues.Publish)

	r.state = Running

	transformStage := &stages.TransformStage{
		CrawlQueue:  r.CrawlQueue,
		In:          extractQueue,
		Out:         transformQueue,
		Pipeline:    r.Pipeline,
		Workers:     positive(r.Workers.Transform, 1),
		PollTimeout: r.PollTimeout,
		Notifier:    r.Notifier,
		Logger:      logger,
	}
	publishStage := &stages.PublishStage{
		CrawlQueue:      r.CrawlQueue,
		In:              transformQueue,
		Out:             publishQueue,
		RegistryFactory: r.RegistryFactory,
		Workers:         positive(r.Workers.Publish, 1),
		PollTimeout:     r.PollTimeout,
		Notifier:        r.Notifier,
		Logger:          logger,
	}
	metricsStage := &stages.MetricsStage{
		In:          publishQueue,
		PollTimeout: r.PollTimeout,
		Logger:      logger,
	}

	// Consumers before producers, so no item is ever lost to a cold sink.
	publishDone := goAsync(func() error { return publishStage.Run(ctx) })
	metricsDone := goAsyncMetrics(metricsStage, ctx)
	transformDone := goAsync(func() error { return transformStage.Run(ctx) })

	driver := r.DriverFactory(crawlType, watermark)
	extractStage := &extract.Stage{
		Driver:     driver,
		CrawlQueue: r.CrawlQueue,
		Queue:      extractQueue,
		Encoder:    r.Encoder,
		Notifier:   r.Notifier,
		Logger:     logger,
	}
	extractErr := extractStage.Run(ctx)

	r.state = Draining

	transformErr := <-transformDone
	publishErr := <-publishDone
	metricsResult := <-metricsDone
	summary := metricsResult.summary

	if err := r.CrawlQueue.Finish(false); err != nil {
		logger.Warn("conveyor.taskrunner.finish.failed", "crawl_id", crawlID, "err", err)
	}

	outcome := "success"
	var firstErr error
	for _, err := range []error{extractErr, transformErr, publishErr, metricsResult.err} {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		outcome = "failed"
		r.state = Failed
	} else {
		r.state = Completed
		if persistErr := r.persistTimer(crawlType, startedAt); persistErr != nil {
			logger.Warn("conveyor.taskrunner.timer.persist_failed", "err", persistErr)
		}
	}

	r.Notifier.CrawlFinished(crawlID, outcome, firstErr)
	logger.Info("conveyor.taskrunner.crawl.finished", "crawl_id", crawlID, "outcome", outcome, "documents", summary.Documents)

	return summary, firstErr
}

// Serve runs crawls in a loop, sleeping StartupDelay before the first
// one and ReviewInterval between subsequent ones, until ctx is canceled.
func (r *Runner) Serve(ctx context.Context) error {
	if r.StartupDelay > 0 {
		select {
		case <-time.After(r.StartupDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		if ctx.Err() != nil {
			r.state = Aborted
			return ctx.Err()
		}

		if _, err := r.RunOnce(ctx); err != nil {
			r.logger().Warn("conveyor.taskrunner.crawl.error", "err", err)
		}

		select {
		case <-time.After(r.ReviewInterval):
		case <-ctx.Done():
			r.state = Aborted
			return ctx.Err()
		}
	}
}

func (r *Runner) decideCrawlType(now time.Time) (crawlqueue.CrawlType, time.Time) {
	if r.Timer.FullDue(now) {
		return crawlqueue.Full, time.Time{}
	}
	return crawlqueue.Incremental, r.Timer.LastIncremental()
}

func (r *Runner) persistTimer(crawlType crawlqueue.CrawlType, startedAt time.Time) error {
	if crawlType == crawlqueue.Full {
		return r.Timer.RecordFull(startedAt)
	}
	return r.Timer.RecordIncremental(startedAt)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func goAsync(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- fn() }()
	return ch
}

type metricsResult struct {
	summary stages.CrawlSummary
	err     error
}

func goAsyncMetrics(stage *stages.MetricsStage, ctx context.Context) <-chan metricsResult {
	ch := make(chan metricsResult, 1)
	go func() {
		summary, err := stage.Run(ctx)
		ch <- metricsResult{summary: summary, err: err}
	}()
	return ch
}
