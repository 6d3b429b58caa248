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
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
	"github.com/kraklabs/conveyor/internal/queue"
)

// PhaseSummary aggregates the timings MetricsStage observed for one
// phase across an entire crawl.
type PhaseSummary struct {
	Count   int
	TotalMS int64
	MinMS   int64
	MaxMS   int64
}

// CrawlSummary is the aggregate throughput report MetricsStage emits at
// phase end, one PhaseSummary per phase observed on the publish queue.
type CrawlSummary struct {
	Documents int
	Phases    map[document.Phase]*PhaseSummary
}

// MetricsStage is a single worker that drains the publish queue,
// accumulates per-phase timing statistics, and emits an aggregate
// summary once the publish-phase-complete marker arrives.
type MetricsStage struct {
	In          *queue.BoundedQueue[document.QueueItem]
	PollTimeout time.Duration
	Logger      *slog.Logger
}

// Run drains the queue until it observes the publish-phase-complete
// marker, then returns the accumulated CrawlSummary.
func (s *MetricsStage) Run(ctx context.Context) (CrawlSummary, error) {
	summary := CrawlSummary{Phases: make(map[document.Phase]*PhaseSummary)}
	logger := s.logger()

	for {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		item, ok, err := s.In.Poll(ctx, s.PollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) {
				return summary, nil
			}
			return summary, err
		}
		if !ok {
			continue
		}

		if crawlqueue.IsPhaseComplete(document.PhasePublish, item) {
			logger.Info("conveyor.metrics.crawl.summary",
				"documents", summary.Documents,
				"phases", summarizePhases(summary.Phases),
			)
			return summary, nil
		}

		summary.Documents++
		for _, t := range item.Timings() {
			summary.record(t)
		}
	}
}

func (s *CrawlSummary) record(t document.PhaseTiming) {
	p, ok := s.Phases[t.Phase]
	if !ok {
		p = &PhaseSummary{MinMS: t.ElapsedMS, MaxMS: t.ElapsedMS}
		s.Phases[t.Phase] = p
	}
	p.Count++
	p.TotalMS += t.ElapsedMS
	if t.ElapsedMS < p.MinMS {
		p.MinMS = t.ElapsedMS
	}
	if t.ElapsedMS > p.MaxMS {
		p.MaxMS = t.ElapsedMS
	}
}

func summarizePhases(phases map[document.Phase]*PhaseSummary) []string {
	out := make([]string, 0, len(phases))
	for phase, p := range phases {
		avg := int64(0)
		if p.Count > 0 {
			avg = p.TotalMS / int64(p.Count)
		}
		out = append(out, fmt.Sprintf("%s: count=%d avg_ms=%d min_ms=%d max_ms=%d", phase, p.Count, avg, p.MinMS, p.MaxMS))
	}
	return out
}
