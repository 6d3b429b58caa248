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
	"github.com/kraklabs/conveyor/internal/publish"
	"github.com/kraklabs/conveyor/internal/queue"
)

// RegistryFactory builds one publish.Registry instance. PublishStage
// calls it once per worker, since a Registry's BatchPublisher instances
// are not safe for concurrent use by more than one worker (spec.md §5's
// "shared resources": each configured publish worker owns its own
// publisher instances).
type RegistryFactory func() (*publish.Registry, error)

// PublishStage runs a pool of workers that hand each transformed
// document to the publisher registry and delete its staged file on
// success.
type PublishStage struct {
	CrawlQueue      *crawlqueue.CrawlQueue
	In              *queue.BoundedQueue[document.QueueItem]
	Out             *queue.BoundedQueue[document.QueueItem]
	RegistryFactory RegistryFactory
	Workers         int
	PollTimeout     time.Duration
	Notifier        notify.Notifier
	Logger          *slog.Logger
}

// Run starts the worker pool, each with its own Registry instance, and
// blocks until every worker exits and its registry has been shut down.
func (s *PublishStage) Run(ctx context.Context) error {
	var once sync.Once
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.Workers; i++ {
		g.Go(func() error {
			return s.runWorker(ctx, &once)
		})
	}
	return g.Wait()
}

func (s *PublishStage) runWorker(ctx context.Context, forwardOnce *sync.Once) error {
	registry, err := s.RegistryFactory()
	if err != nil {
		return err
	}
	defer func() {
		if err := registry.Shutdown(context.Background()); err != nil {
			s.logger().Warn("conveyor.publish.shutdown.failed", "err", err)
		}
	}()

	return s.worker(ctx, registry, forwardOnce)
}

func (s *PublishStage) worker(ctx context.Context, registry *publish.Registry, forwardOnce *sync.Once) error {
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

		if crawlqueue.IsPhaseComplete(document.PhaseTransform, item) {
			return s.forwardPhaseComplete(ctx, item, forwardOnce)
		}

		s.process(ctx, item, registry, logger)
	}
}

// forwardPhaseComplete re-posts the upstream marker to In so every other
// worker in the pool also observes it and exits, then forwards the
// downstream marker exactly once.
func (s *PublishStage) forwardPhaseComplete(ctx context.Context, item document.QueueItem, forwardOnce *sync.Once) error {
	if err := s.In.Put(ctx, item); err != nil && !errors.Is(err, queue.ErrClosed) {
		return err
	}
	var forwardErr error
	forwardOnce.Do(func() {
		forwardErr = s.Out.Put(ctx, document.NewMarkerItem(document.PhasePublish))
	})
	return forwardErr
}

func (s *PublishStage) process(ctx context.Context, item document.QueueItem, registry *publish.Registry, logger *slog.Logger) {
	id := item.ID()
	start := time.Now()

	doc, err := s.CrawlQueue.ReadDoc(document.PhaseTransform, id)
	if err != nil {
		s.fail(id, document.PhaseTransform, item, err, logger)
		return
	}

	if err := registry.Send(ctx, doc); err != nil {
		s.fail(id, document.PhasePublish, item, err, logger)
		return
	}

	if err := s.CrawlQueue.RemoveDoc(document.PhaseTransform, id); err != nil {
		logger.Warn("conveyor.publish.cleanup.failed", "id", id, "err", err)
	}

	elapsed := time.Since(start).Milliseconds()
	metrics.RecordPublished()
	metrics.ObservePublishSeconds(time.Since(start).Seconds())

	out := item.WithTiming(document.PhasePublish, elapsed)
	if err := s.Out.Put(ctx, out); err != nil {
		logger.Warn("conveyor.publish.forward.failed", "id", id, "err", err)
	}
}

// fail logs and notifies a per-item failure, then still forwards the
// item to MetricsStage tagged with PhaseError rather than dropping it
// silently, so the aggregate throughput stats see every item that
// entered the pipeline (SPEC_FULL.md open question 3).
func (s *PublishStage) fail(id string, phase document.Phase, item document.QueueItem, err error, logger *slog.Logger) {
	logger.Warn("conveyor.publish.failed", "phase", phase, "id", id, "err", err)
	s.Notifier.ItemFailed(string(phase), id, err)
	metrics.RecordDropped(string(phase))

	out := item.WithTiming(document.PhaseError, 0)
	if putErr := s.Out.Put(context.Background(), out); putErr != nil {
		logger.Warn("conveyor.publish.forward.failed", "id", id, "err", putErr)
	}
}

func (s *PublishStage) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
