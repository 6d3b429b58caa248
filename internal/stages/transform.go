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

// Package stages runs the worker pools that sit between the extract
// driver and the publisher registry: TransformStage, PublishStage, and
// MetricsStage. Each stage polls an upstream bounded queue, does its
// phase's work per document, and forwards the upstream's end-of-phase
// marker to its own downstream queue exactly once.
//
// A worker pool's suspension points are the upstream timed poll and the
// downstream blocking put, matching spec.md §5; the process-wide "alive"
// flag the spec describes is realized here as ctx cancellation, the
// idiomatic Go equivalent of a cooperatively-checked boolean.
package stages

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
	"github.com/kraklabs/conveyor/internal/metrics"
	"github.com/kraklabs/conveyor/internal/notify"
	"github.com/kraklabs/conveyor/internal/pipeline"
	"github.com/kraklabs/conveyor/internal/queue"
)

// TransformStage runs a pool of workers that load each extracted
// document, run it through the transform pipeline, and stage the
// result for publishing.
type TransformStage struct {
	CrawlQueue  *crawlqueue.CrawlQueue
	In          *queue.BoundedQueue[document.QueueItem]
	Out         *queue.BoundedQueue[document.QueueItem]
	Pipeline    *pipeline.TransformPipeline
	Workers     int
	PollTimeout time.Duration
	Notifier    notify.Notifier
	Logger      *slog.Logger
}

// Run starts the worker pool and blocks until every worker has exited,
// which happens once each has observed the extract-phase-complete
// marker and exactly one of them has forwarded it downstream.
func (s *TransformStage) Run(ctx context.Context) error {
	var once sync.Once
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.Workers; i++ {
		g.Go(func() error {
			return s.worker(ctx, &once)
		})
	}
	return g.Wait()
}

func (s *TransformStage) worker(ctx context.Context, forwardOnce *sync.Once) error {
	logger := s.logger()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		item, ok, err := s.In.Poll(ctx, s.PollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return err
		}
		if !ok {
			continue
		}

		if crawlqueue.IsPhaseComplete(document.PhaseExtract, item) {
			return s.forwardPhaseComplete(ctx, item, forwardOnce)
		}

		s.process(ctx, item, logger)
	}
}

// forwardPhaseComplete re-posts the upstream marker to In so every other
// worker in the pool also observes it and exits, then forwards the
// downstream marker exactly once.
func (s *TransformStage) forwardPhaseComplete(ctx context.Context, item document.QueueItem, forwardOnce *sync.Once) error {
	if err := s.In.Put(ctx, item); err != nil && !errors.Is(err, queue.ErrClosed) {
		return err
	}
	var forwardErr error
	forwardOnce.Do(func() {
		forwardErr = s.Out.Put(ctx, document.NewMarkerItem(document.PhaseTransform))
	})
	return forwardErr
}

func (s *TransformStage) process(ctx context.Context, item document.QueueItem, logger *slog.Logger) {
	id := item.ID()
	start := time.Now()

	doc, err := s.CrawlQueue.ReadDoc(document.PhaseExtract, id)
	if err != nil {
		s.drop(id, err, logger)
		return
	}

	result, err := s.Pipeline.Run(ctx, doc)
	if err != nil {
		s.drop(id, err, logger)
		return
	}

	if err := s.CrawlQueue.Transition(document.PhaseExtract, document.PhaseTransform, id, result); err != nil {
		s.drop(id, err, logger)
		return
	}

	elapsed := time.Since(start).Milliseconds()
	metrics.RecordTransformed()
	metrics.ObserveTransformSeconds(time.Since(start).Seconds())

	out := item.WithTiming(document.PhaseTransform, elapsed)
	if err := s.Out.Put(ctx, out); err != nil {
		logger.Warn("conveyor.transform.forward.failed", "id", id, "err", err)
	}
}

func (s *TransformStage) drop(id string, err error, logger *slog.Logger) {
	logger.Warn("conveyor.transform.failed", "id", id, "err", err)
	s.Notifier.ItemFailed(string(document.PhaseTransform), id, err)
	metrics.RecordDropped(string(document.PhaseTransform))
}

func (s *TransformStage) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
