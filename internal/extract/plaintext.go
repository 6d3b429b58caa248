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

package extract

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kraklabs/conveyor/internal/document"
)

// PlainTextParser is the default FileParser: it reads CSV files row by
// row against a fixed schema, and everything else as a single opaque
// text blob. It has no notion of HTML tag stripping or binary format
// extraction; a richer parser is an external collaborator's concern.
type PlainTextParser struct {
	// CSVSchema is used for files with a .csv extension. Its field order
	// must match the CSV column order.
	CSVSchema *document.Schema
}

var textSchema = &document.Schema{
	Fields: []document.FieldDef{
		{Name: "id", Type: document.FieldText, PrimaryKey: true},
		{Name: "content", Type: document.FieldText},
	},
}

// ParseFile implements FileParser.
func (p *PlainTextParser) ParseFile(path string, data []byte) (*document.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return p.parseCSV(path, data)
	}
	return p.parseText(path, data)
}

func (p *PlainTextParser) parseText(path string, data []byte) (*document.Document, error) {
	content := string(data)
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("plaintext: %s: not valid utf-8", path)
	}
	doc := document.New("", "file", textSchema)
	doc.Rows = []document.Row{{"id": "", "content": content}}
	doc.Features["source_path"] = path
	return doc, nil
}

func (p *PlainTextParser) parseCSV(path string, data []byte) (*document.Document, error) {
	schema := p.CSVSchema
	if schema == nil {
		return nil, fmt.Errorf("plaintext: %s: no CSV schema configured", path)
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("plaintext: %s: %w", path, err)
	}

	doc := document.New("", "record", schema)
	doc.Features["source_path"] = path
	for _, record := range records {
		row := make(document.Row, len(schema.Fields))
		for i, field := range schema.Fields {
			if i < len(record) {
				row[field.Name] = record[i]
			}
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

var _ FileParser = (*PlainTextParser)(nil)
