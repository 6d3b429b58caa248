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

package publish

import (
	"context"
	"fmt"

	"github.com/kraklabs/conveyor/internal/document"
)

// Registry dispatches a document to every publisher in a configured,
// ordered pipeline. It is re-instantiated once per PublishStage worker,
// since each BatchPublisher instance is owned by exactly one worker.
type Registry struct {
	publishers []*BatchPublisher
}

// NewRegistry resolves pipeline (an ordered list of publisher names)
// against factories, a map of name to a fresh-instance constructor. An
// unresolvable name is a fatal configuration error.
func NewRegistry(pipeline []string, factories map[string]func() *BatchPublisher) (*Registry, error) {
	r := &Registry{publishers: make([]*BatchPublisher, 0, len(pipeline))}
	for _, name := range pipeline {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("publish: registry: unresolvable publisher %q", name)
		}
		r.publishers = append(r.publishers, factory())
	}
	return r, nil
}

// Validate checks every registered publisher's configuration. Called
// before any crawl begins so a misconfiguration fails fast.
func (r *Registry) Validate() error {
	for _, p := range r.publishers {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Send dispatches doc to each publisher's Add, in pipeline order.
func (r *Registry) Send(ctx context.Context, doc *document.Document) error {
	for _, p := range r.publishers {
		if err := p.Add(ctx, doc); err != nil {
			return fmt.Errorf("publish: registry: publisher %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Shutdown shuts down every publisher, flushing and committing each.
// It continues past an individual publisher's error so the rest still
// get a chance to flush, returning the first error encountered.
func (r *Registry) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, p := range r.publishers {
		if err := p.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Publishers returns the resolved publisher instances, in pipeline order.
func (r *Registry) Publishers() []*BatchPublisher {
	return r.publishers
}
