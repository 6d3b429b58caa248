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

// Package extract runs the driver-specific producer half of a crawl: it
// discovers documents from a source, writes each into the crawl queue's
// extract sub-area, and posts a queue item for every one it writes. The
// concrete discovery policy (HTTP politeness, robots handling, content
// detection, file-tree walking) belongs to a Driver implementation; this
// package only owns the contract every driver must honor toward the
// core pipeline.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
	"github.com/kraklabs/conveyor/internal/ids"
	"github.com/kraklabs/conveyor/internal/metrics"
	"github.com/kraklabs/conveyor/internal/notify"
	"github.com/kraklabs/conveyor/internal/queue"
)

// EmitFunc is called by a Driver once per discovered document, after the
// driver has already checked the location against follow/ignore rules.
// locator is the source-specific address (a path or a URL) the document
// was read from; doc is the parsed document, not yet assigned an id.
type EmitFunc func(locator string, doc *document.Document) error

// Driver discovers documents from one kind of source (filesystem, web
// site, network share) and reports each through emit. Discover must
// return promptly once ctx is done, leaving any partially written
// extract-phase file on disk; the core retries nothing on its behalf.
type Driver interface {
	Discover(ctx context.Context, emit EmitFunc) error
}

// Stage is the extract half of the pipeline: it owns the driver, wires
// discovered documents into the crawl queue and extract queue, and posts
// the crawl-finish marker once the driver is exhausted.
type Stage struct {
	Driver     Driver
	CrawlQueue *crawlqueue.CrawlQueue
	Queue      *queue.BoundedQueue[document.QueueItem]
	Encoder    *ids.IdentityEncoder
	Notifier   notify.Notifier
	Logger     *slog.Logger
}

// Run discovers and stages every document the driver produces, then
// posts the extract-phase-complete marker as its final queue operation.
// Run returns the driver's error, if any, after the marker has been
// posted; a canceled context still results in a best-effort marker post
// so downstream stages are not left waiting forever.
func (s *Stage) Run(ctx context.Context) error {
	logger := s.logger()

	emit := func(locator string, doc *document.Document) error {
		start := time.Now()
		id := s.Encoder.Encode(locator)
		doc.ID = id

		if err := s.CrawlQueue.WriteDoc(document.PhaseExtract, id, doc); err != nil {
			logger.Warn("conveyor.extract.write.failed", "locator", locator, "id", id, "err", err)
			s.Notifier.ItemFailed(string(document.PhaseExtract), id, err)
			metrics.RecordDropped(string(document.PhaseExtract))
			return nil
		}

		elapsedMS := time.Since(start).Milliseconds()
		metrics.RecordExtracted()
		metrics.ObserveExtractSeconds(time.Since(start).Seconds())
		item := document.NewDocumentItem(id).WithTiming(document.PhaseExtract, elapsedMS)
		return s.Queue.Put(ctx, item)
	}

	discoverErr := s.Driver.Discover(ctx, emit)

	markerCtx := ctx
	if ctx.Err() != nil {
		// Best-effort: a canceled extract still owes downstream a
		// marker so transform/publish/metrics don't block forever.
		var cancel context.CancelFunc
		markerCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	markerErr := s.Queue.Put(markerCtx, document.NewMarkerItem(document.PhaseExtract))

	if discoverErr != nil {
		return discoverErr
	}
	return markerErr
}

func (s *Stage) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
