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

package document

import "fmt"

// Row is one record conforming to a Document's Schema, keyed by field
// name. Values are stored in their string encoding; multi-value fields
// carry their delimiter-joined form here and are split on demand.
type Row map[string]string

// Relationship is one typed edge to a set of owned child documents. The
// relationship graph is modeled as an owned tree (children have no
// back-reference to their parent), which makes it finite and acyclic by
// construction; Validate still walks it defensively since a
// maliciously-constructed or deserialized document could alias child
// pointers.
type Relationship struct {
	Type       string
	Properties map[string]string
	Children   []*Document
}

// ACL maps a principal name to a permission string (e.g. "read",
// "read-write"). The core treats both sides as opaque strings; it is the
// publisher's concern to translate them into index-specific ACL fields.
type ACL map[string]string

// Document is the unit of ingestion: a typed record with a schema, zero
// or more schema-conformant rows, open-ended features, a tree of typed
// child relationships, and an ACL.
//
// A Document is constructed by the extract stage, mutated only by the
// transform pipeline, and read-only to the publish stage.
type Document struct {
	ID            string
	Type          string
	Schema        *Schema
	Rows          []Row
	Features      map[string]string
	Relationships []Relationship
	ACL           ACL
}

// New creates an empty Document of the given type and id, ready for the
// extract stage to populate.
func New(id, docType string, schema *Schema) *Document {
	return &Document{
		ID:       id,
		Type:     docType,
		Schema:   schema,
		Features: make(map[string]string),
		ACL:      make(ACL),
	}
}

// Options returns the typed subset of this document's Features.
func (d *Document) Options() Options {
	return ParseOptions(d.Features)
}

// Validate checks every invariant the data model requires: a unique,
// assigned primary-key value per row, every value satisfying its schema
// type, and an acyclic, finite relationship graph.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document: empty id")
	}
	if d.Schema == nil {
		return fmt.Errorf("document %s: no schema", d.ID)
	}
	if err := d.Schema.Validate(); err != nil {
		return fmt.Errorf("document %s: %w", d.ID, err)
	}

	pk, hasPK := d.Schema.PrimaryKeyField()
	seenPK := make(map[string]bool, len(d.Rows))
	for i, row := range d.Rows {
		for _, f := range d.Schema.Fields {
			if err := f.ValidateValue(row[f.Name]); err != nil {
				return fmt.Errorf("document %s row %d: %w", d.ID, i, err)
			}
		}
		if hasPK {
			val := row[pk.Name]
			if val == "" {
				return fmt.Errorf("document %s row %d: primary key %q unassigned", d.ID, i, pk.Name)
			}
			if seenPK[val] {
				return fmt.Errorf("document %s row %d: duplicate primary key value %q", d.ID, i, val)
			}
			seenPK[val] = true
		}
	}

	visited := make(map[*Document]bool)
	for _, rel := range d.Relationships {
		for _, child := range rel.Children {
			if err := checkAcyclic(child, visited); err != nil {
				return fmt.Errorf("document %s: %w", d.ID, err)
			}
		}
	}
	return nil
}

func checkAcyclic(d *Document, visited map[*Document]bool) error {
	if d == nil {
		return nil
	}
	if visited[d] {
		return fmt.Errorf("relationship graph contains a cycle at document %s", d.ID)
	}
	visited[d] = true
	defer delete(visited, d)

	for _, rel := range d.Relationships {
		for _, child := range rel.Children {
			if err := checkAcyclic(child, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the document, including its relationship
// tree. The schema pointer is shared (schemas are immutable once loaded).
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{
		ID:     d.ID,
		Type:   d.Type,
		Schema: d.Schema,
	}
	if d.Rows != nil {
		clone.Rows = make([]Row, len(d.Rows))
		for i, row := range d.Rows {
			r := make(Row, len(row))
			for k, v := range row {
				r[k] = v
			}
			clone.Rows[i] = r
		}
	}
	if d.Features != nil {
		clone.Features = make(map[string]string, len(d.Features))
		for k, v := range d.Features {
			clone.Features[k] = v
		}
	}
	if d.ACL != nil {
		clone.ACL = make(ACL, len(d.ACL))
		for k, v := range d.ACL {
			clone.ACL[k] = v
		}
	}
	if d.Relationships != nil {
		clone.Relationships = make([]Relationship, len(d.Relationships))
		for i, rel := range d.Relationships {
			cr := Relationship{Type: rel.Type}
			if rel.Properties != nil {
				cr.Properties = make(map[string]string, len(rel.Properties))
				for k, v := range rel.Properties {
					cr.Properties[k] = v
				}
			}
			cr.Children = make([]*Document, len(rel.Children))
			for j, child := range rel.Children {
				cr.Children[j] = child.Clone()
			}
			clone.Relationships[i] = cr
		}
	}
	return clone
}
