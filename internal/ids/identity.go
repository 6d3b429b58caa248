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

// Package ids turns a source locator into a stable document id.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// IdentityEncoder derives document ids from source locators. The same
// locator always yields the same id, across runs and across machines, so
// a re-crawled document publishes as an update rather than a duplicate.
type IdentityEncoder struct {
	prefix string
}

// NewIdentityEncoder creates an encoder that prefixes every id with
// prefix (e.g. the source name), so ids from different sources can never
// collide even if their locators happen to match.
func NewIdentityEncoder(prefix string) *IdentityEncoder {
	return &IdentityEncoder{prefix: prefix}
}

// Encode derives a document id from locator. Short, already-safe
// locators are kept readable; long or unsafe ones are hashed to keep ids
// a predictable, bounded size.
func (e *IdentityEncoder) Encode(locator string) string {
	normalized := normalizeLocator(locator)

	if len(normalized) <= 200 && isSafeID(normalized) {
		return e.withPrefix(normalized)
	}
	return e.withPrefix(e.hash(normalized))
}

// EncodeRelationship derives a stable id for a relationship endpoint that
// is not itself a crawled document, e.g. a child record addressed by a
// parent locator plus a local key.
func (e *IdentityEncoder) EncodeRelationship(parentLocator, relation, key string) string {
	composite := fmt.Sprintf("%s\x1f%s\x1f%s", normalizeLocator(parentLocator), relation, key)
	return e.withPrefix(e.hash(composite))
}

func (e *IdentityEncoder) hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (e *IdentityEncoder) withPrefix(id string) string {
	if e.prefix == "" {
		return id
	}
	return e.prefix + ":" + id
}

// normalizeLocator makes a locator canonical before hashing or display,
// so equivalent paths on different platforms (or with redundant
// separators) produce the same id.
func normalizeLocator(locator string) string {
	locator = strings.TrimPrefix(locator, "./")
	if looksLikePath(locator) {
		locator = filepath.ToSlash(filepath.Clean(locator))
		locator = strings.TrimPrefix(locator, "/")
	}
	return locator
}

func looksLikePath(s string) bool {
	return !strings.Contains(s, "://")
}

// isSafeID reports whether s can be used verbatim as a readable id
// fragment: no control characters, no characters that Solr or the crawl
// queue's filesystem staging would treat specially.
func isSafeID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
		switch r {
		case '\\', '*', '?', '"', '<', '>', '|':
			return false
		}
	}
	return true
}
