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

// Package pipeline runs a document through an ordered sequence of
// user-configured transformation units. The pipeline itself is a pure
// function: it owns no state between documents, and its units are
// supplied by the caller rather than discovered by name.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tangerg/lynx/flow"

	"github.com/kraklabs/conveyor/internal/document"
)

// Unit transforms one document into another. A unit may return the same
// document it was given, a modified copy, or an error to fail the
// document out of the pipeline entirely.
type Unit interface {
	Name() string
	Transform(ctx context.Context, doc *document.Document) (*document.Document, error)
}

// UnitFunc adapts a plain function to a Unit.
type UnitFunc struct {
	UnitName string
	Func     func(ctx context.Context, doc *document.Document) (*document.Document, error)
}

func (u UnitFunc) Name() string { return u.UnitName }

func (u UnitFunc) Transform(ctx context.Context, doc *document.Document) (*document.Document, error) {
	return u.Func(ctx, doc)
}

// TransformPipeline chains a configured list of Units into a single
// flow.Flow, one flow.Sequence node per unit. It is built once at
// startup and reused, unmodified, across every document in a crawl.
type TransformPipeline struct {
	units    []Unit
	compiled flow.Node[any, any]
}

// New builds a TransformPipeline from units, in order. An empty unit
// list is valid: the pipeline then passes documents through unchanged.
func New(units ...Unit) *TransformPipeline {
	return &TransformPipeline{units: units}
}

// Validate compiles the configured units into a runnable flow, failing
// fast on a misconfigured pipeline (for example, a unit with an empty
// name) before any crawl begins. It must be called once before the
// first Run.
func (p *TransformPipeline) Validate() error {
	for i, u := range p.units {
		if u.Name() == "" {
			return fmt.Errorf("pipeline: unit %d has no name", i)
		}
	}
	if len(p.units) == 0 {
		p.compiled = nil
		return nil
	}

	f := flow.NewFlow()
	cursor := f
	for _, u := range p.units {
		unit := u
		cursor = cursor.Sequence().
			WithProcessor(func(ctx context.Context, input any) (any, error) {
				doc, ok := input.(*document.Document)
				if !ok {
					return nil, fmt.Errorf("pipeline: unit %s received non-document input", unit.Name())
				}
				out, err := unit.Transform(ctx, doc)
				if err != nil {
					return nil, fmt.Errorf("pipeline: unit %s: %w", unit.Name(), err)
				}
				return out, nil
			}).
			Then()
	}
	compiled, err := f.Compile()
	if err != nil {
		return fmt.Errorf("pipeline: compile: %w", err)
	}
	p.compiled = compiled
	return nil
}

// Run executes the pipeline against doc, returning the transformed
// document. An empty pipeline returns doc unchanged.
func (p *TransformPipeline) Run(ctx context.Context, doc *document.Document) (*document.Document, error) {
	if len(p.units) == 0 {
		return doc, nil
	}
	if p.compiled == nil {
		return nil, errors.New("pipeline: not validated")
	}
	out, err := p.compiled.Run(ctx, doc)
	if err != nil {
		return nil, err
	}
	result, ok := out.(*document.Document)
	if !ok {
		return nil, fmt.Errorf("pipeline: final output is not a document")
	}
	return result, nil
}

// Units returns the configured units, in order.
func (p *TransformPipeline) Units() []Unit {
	return p.units
}
