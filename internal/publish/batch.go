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

// Package publish batches documents to a search index and mirrors them
// to an optional XML archive, with periodic commits and a hard cap on
// the total number of documents forwarded per crawl.
package publish

import (
	"context"
	"fmt"
	"sync"

	"github.com/kraklabs/conveyor/internal/document"
	"github.com/kraklabs/conveyor/internal/metrics"
	"github.com/kraklabs/conveyor/internal/solr"
)

// Config configures one BatchPublisher instance.
type Config struct {
	BatchSize       int
	CommitEvery     int
	MaxDocs         int // 0 means unlimited
	UploadEnabled   bool
	Archive         bool
	OptimizeOnClose bool
}

// BatchPublisher buffers documents up to a batch threshold, flushes
// them to an index, and issues a commit every N cumulative documents.
// One instance is owned by exactly one publish worker; a registry with
// multiple publish workers configured must instantiate one BatchPublisher
// per worker per named publisher.
type BatchPublisher struct {
	name   string
	index  solr.Index
	config Config
	arch   *Archiver

	mu    sync.Mutex
	batch []*document.Document
	sent  int
}

// New creates a BatchPublisher named name, sending to index and
// optionally mirroring batches through arch (nil disables archiving).
func New(name string, index solr.Index, config Config, arch *Archiver) *BatchPublisher {
	return &BatchPublisher{name: name, index: index, config: config, arch: arch}
}

// Name returns the publisher's configured name.
func (p *BatchPublisher) Name() string { return p.name }

// Validate checks the publisher's configuration is usable before a
// crawl begins.
func (p *BatchPublisher) Validate() error {
	if p.config.UploadEnabled && p.index == nil {
		return fmt.Errorf("publish: publisher %s: upload enabled but no index configured", p.name)
	}
	if p.config.BatchSize <= 0 {
		return fmt.Errorf("publish: publisher %s: batch size must be positive", p.name)
	}
	if p.config.CommitEvery <= 0 {
		return fmt.Errorf("publish: publisher %s: commit threshold must be positive", p.name)
	}
	return nil
}

// Add buffers doc, per spec.md §4.6: silently drop once the
// max-document cap is reached, otherwise append and flush/commit when
// the configured thresholds are crossed.
func (p *BatchPublisher) Add(ctx context.Context, doc *document.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.MaxDocs > 0 && p.sent >= p.config.MaxDocs {
		metrics.RecordMaxCapDropped()
		return nil
	}

	p.batch = append(p.batch, doc)
	p.sent++

	var err error
	if len(p.batch) >= p.config.BatchSize {
		err = p.flushLocked(ctx)
	}
	if err == nil && p.config.UploadEnabled && p.config.CommitEvery > 0 && p.sent%p.config.CommitEvery == 0 {
		err = p.commitLocked(ctx)
	}
	return err
}

// flushLocked sends the current batch to the index (if uploads are
// enabled) and/or the archive, then clears it. Must hold p.mu.
func (p *BatchPublisher) flushLocked(ctx context.Context) error {
	if len(p.batch) == 0 {
		return nil
	}
	batch := p.batch
	p.batch = nil

	if p.config.UploadEnabled {
		if err := p.index.Add(ctx, batch); err != nil {
			return fmt.Errorf("publish: publisher %s: add: %w", p.name, err)
		}
		metrics.RecordAdd()
	}
	if p.config.Archive && p.arch != nil {
		if err := p.arch.WriteBatch(batch); err != nil {
			return fmt.Errorf("publish: publisher %s: archive: %w", p.name, err)
		}
	}
	return nil
}

// commitLocked issues a commit to the index and, if archiving, records
// a commit marker in the archive stream. Must hold p.mu.
func (p *BatchPublisher) commitLocked(ctx context.Context) error {
	if err := p.index.Commit(ctx); err != nil {
		return fmt.Errorf("publish: publisher %s: commit: %w", p.name, err)
	}
	metrics.RecordCommit()
	if p.config.Archive && p.arch != nil {
		if err := p.arch.WriteCommitMarker(); err != nil {
			return fmt.Errorf("publish: publisher %s: archive commit marker: %w", p.name, err)
		}
	}
	return nil
}

// FlushAndCommit flushes any residual batch, then commits.
func (p *BatchPublisher) FlushAndCommit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.flushLocked(ctx); err != nil {
		return err
	}
	if !p.config.UploadEnabled {
		return nil
	}
	return p.commitLocked(ctx)
}

// Shutdown flushes and commits, optimizes the index if configured to,
// and releases resources. The batch list and sent counter are never
// rolled back on an earlier error: BatchPublisher gives at-least-once
// delivery, not exactly-once.
func (p *BatchPublisher) Shutdown(ctx context.Context) error {
	if err := p.FlushAndCommit(ctx); err != nil {
		return err
	}
	if p.config.UploadEnabled && p.config.OptimizeOnClose {
		if err := p.index.Optimize(ctx); err != nil {
			return fmt.Errorf("publish: publisher %s: optimize: %w", p.name, err)
		}
	}
	return nil
}

// Sent returns the cumulative number of documents accepted so far
// (including ones still buffered, not yet flushed).
func (p *BatchPublisher) Sent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}
