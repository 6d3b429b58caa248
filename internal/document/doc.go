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

// Package document defines the ingestion connector's value model: a typed
// Document with a Schema, a row table, an open-ended features map, a tree
// of typed relationships, and an ACL.
//
// Documents are constructed by an extract driver, mutated only by the
// transform pipeline, and read-only from that point on. Serialization
// round-trips through XML (field types, multi-value delimiters, and the
// relationship tree all survive a Marshal/Unmarshal cycle); this is the
// on-disk format the crawl queue stages between pipeline phases.
package document
