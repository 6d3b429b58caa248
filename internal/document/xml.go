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

import "encoding/xml"

// Codec serializes and deserializes a Document. The core depends only on
// this interface, not on any particular wire dialect; XMLCodec is the
// implementation the crawl queue uses for on-disk staging.
type Codec interface {
	Encode(d *Document) ([]byte, error)
	Decode(data []byte) (*Document, error)
}

// XMLCodec round-trips a Document through XML, preserving field types,
// multi-value delimiters, and the relationship tree.
type XMLCodec struct{}

// wireDocument is the XML-friendly mirror of Document: maps become
// ordered slices of name/value pairs so encoding/xml can marshal them
// without reflection surprises.
type wireDocument struct {
	XMLName       xml.Name           `xml:"document"`
	ID            string             `xml:"id,attr"`
	Type          string             `xml:"type,attr"`
	Schema        *Schema            `xml:"schema"`
	Rows          []wireRow          `xml:"rows>row"`
	Features      []wireEntry        `xml:"features>feature"`
	ACL           []wireEntry        `xml:"acl>entry"`
	Relationships []wireRelationship `xml:"relationships>relationship"`
}

type wireRow struct {
	Values []wireEntry `xml:"value"`
}

type wireEntry struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type wireRelationship struct {
	Type       string      `xml:"type,attr"`
	Properties []wireEntry `xml:"properties>property"`
	Children   []*wireDocument `xml:"document"`
}

// Encode implements Codec.
func (XMLCodec) Encode(d *Document) ([]byte, error) {
	w := toWire(d)
	return xml.MarshalIndent(w, "", "  ")
}

// Decode implements Codec.
func (XMLCodec) Decode(data []byte) (*Document, error) {
	var w wireDocument
	if err := xml.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(&w), nil
}

func toWire(d *Document) *wireDocument {
	if d == nil {
		return nil
	}
	w := &wireDocument{
		ID:     d.ID,
		Type:   d.Type,
		Schema: d.Schema,
	}
	for _, row := range d.Rows {
		w.Rows = append(w.Rows, wireRow{Values: entriesFromMap(row)})
	}
	w.Features = entriesFromMap(d.Features)
	w.ACL = entriesFromMap(d.ACL)
	for _, rel := range d.Relationships {
		wr := wireRelationship{
			Type:       rel.Type,
			Properties: entriesFromMap(rel.Properties),
		}
		for _, child := range rel.Children {
			wr.Children = append(wr.Children, toWire(child))
		}
		w.Relationships = append(w.Relationships, wr)
	}
	return w
}

func fromWire(w *wireDocument) *Document {
	if w == nil {
		return nil
	}
	d := &Document{
		ID:     w.ID,
		Type:   w.Type,
		Schema: w.Schema,
	}
	for _, row := range w.Rows {
		d.Rows = append(d.Rows, Row(mapFromEntries(row.Values)))
	}
	if f := mapFromEntries(w.Features); f != nil {
		d.Features = f
	} else {
		d.Features = make(map[string]string)
	}
	if a := mapFromEntries(w.ACL); a != nil {
		d.ACL = ACL(a)
	} else {
		d.ACL = make(ACL)
	}
	for _, wr := range w.Relationships {
		rel := Relationship{Type: wr.Type, Properties: mapFromEntries(wr.Properties)}
		for _, child := range wr.Children {
			rel.Children = append(rel.Children, fromWire(child))
		}
		d.Relationships = append(d.Relationships, rel)
	}
	return d
}

func entriesFromMap(m map[string]string) []wireEntry {
	if len(m) == 0 {
		return nil
	}
	entries := make([]wireEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, wireEntry{Name: k, Value: v})
	}
	return entries
}

func mapFromEntries(entries []wireEntry) map[string]string {
	if len(entries) == 0 {
		return nil
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Name] = e.Value
	}
	return m
}
