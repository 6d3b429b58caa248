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

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType is the typed value domain for a Schema field.
type FieldType string

// Supported field types, per the data model.
const (
	FieldText     FieldType = "text"
	FieldInteger  FieldType = "integer"
	FieldLong     FieldType = "long"
	FieldFloat    FieldType = "float"
	FieldDouble   FieldType = "double"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldDateTime FieldType = "datetime"
)

// Valid reports whether t is a recognized field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldInteger, FieldLong, FieldFloat, FieldDouble,
		FieldBoolean, FieldDate, FieldTime, FieldDateTime:
		return true
	}
	return false
}

// ValueRange constrains a field's numeric or lexical range. Min/Max are
// stored as the same string encoding used for field values; an empty
// bound means unconstrained on that side.
type ValueRange struct {
	Min string `xml:"min,attr,omitempty"`
	Max string `xml:"max,attr,omitempty"`
}

// FieldDef describes one named, typed field in a Schema.
type FieldDef struct {
	Name        string      `xml:"name,attr"`
	Type        FieldType   `xml:"type,attr"`
	Required    bool        `xml:"required,attr,omitempty"`
	PrimaryKey  bool        `xml:"primaryKey,attr,omitempty"`
	MultiValue  bool        `xml:"multiValue,attr,omitempty"`
	Delimiter   string      `xml:"delimiter,attr,omitempty"`
	Default     string      `xml:"default,attr,omitempty"`
	Range       *ValueRange `xml:"range,omitempty"`
}

// Schema is an ordered set of field definitions, unique by name, with at
// most one primary-key field. Treated as immutable once loaded.
type Schema struct {
	Fields []FieldDef `xml:"field"`
}

// Validate checks the structural invariants of the schema itself: unique
// field names, a valid type per field, and at most one primary-key field.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Fields))
	pkCount := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema: field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("schema: duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return fmt.Errorf("schema: field %q has invalid type %q", f.Name, f.Type)
		}
		if f.PrimaryKey {
			pkCount++
		}
		if f.MultiValue && f.Delimiter == "" {
			return fmt.Errorf("schema: field %q is multi-value but has no delimiter", f.Name)
		}
	}
	if pkCount > 1 {
		return fmt.Errorf("schema: more than one primary-key field declared")
	}
	return nil
}

// FieldByName returns the field definition with the given name.
func (s *Schema) FieldByName(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// PrimaryKeyField returns the schema's primary-key field, if declared.
func (s *Schema) PrimaryKeyField() (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.PrimaryKey {
			return f, true
		}
	}
	return FieldDef{}, false
}

// ValidateValue checks that raw satisfies f's type. Multi-value fields are
// validated component-wise after splitting on the field's delimiter.
func (f FieldDef) ValidateValue(raw string) error {
	if raw == "" {
		if f.Required && f.Default == "" {
			return fmt.Errorf("field %q: required value missing", f.Name)
		}
		return nil
	}
	if f.MultiValue {
		for _, part := range splitMultiValue(raw, f.Delimiter) {
			if err := f.validateScalar(part); err != nil {
				return err
			}
		}
		return nil
	}
	return f.validateScalar(raw)
}

func (f FieldDef) validateScalar(raw string) error {
	switch f.Type {
	case FieldInteger:
		if _, err := strconv.ParseInt(raw, 10, 32); err != nil {
			return fmt.Errorf("field %q: %q is not an integer", f.Name, raw)
		}
	case FieldLong:
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Errorf("field %q: %q is not a long", f.Name, raw)
		}
	case FieldFloat:
		if _, err := strconv.ParseFloat(raw, 32); err != nil {
			return fmt.Errorf("field %q: %q is not a float", f.Name, raw)
		}
	case FieldDouble:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Errorf("field %q: %q is not a double", f.Name, raw)
		}
	case FieldBoolean:
		if _, err := strconv.ParseBool(raw); err != nil {
			return fmt.Errorf("field %q: %q is not a boolean", f.Name, raw)
		}
	case FieldDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return fmt.Errorf("field %q: %q is not a date", f.Name, raw)
		}
	case FieldTime:
		if _, err := time.Parse("15:04:05", raw); err != nil {
			return fmt.Errorf("field %q: %q is not a time", f.Name, raw)
		}
	case FieldDateTime:
		if _, err := time.Parse(time.RFC3339, raw); err != nil {
			return fmt.Errorf("field %q: %q is not a datetime", f.Name, raw)
		}
	case FieldText:
		// any string is valid text
	}
	return nil
}

func splitMultiValue(raw, delimiter string) []string {
	if delimiter == "" {
		return []string{raw}
	}
	var parts []string
	start := 0
	d := delimiter[0]
	for i := 0; i < len(raw); i++ {
		if raw[i] == d {
			parts = append(parts, raw[start:i])
			start = i + 1
		}
	}
	parts = append(parts, raw[start:])
	return parts
}
