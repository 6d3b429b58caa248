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
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
)

// Archiver mirrors each batch a BatchPublisher sends to the index into
// a sequence-numbered XML file under the crawl's archive sub-area.
type Archiver struct {
	crawlQueue *crawlqueue.CrawlQueue
	codec      document.Codec
	sequence   int
}

// NewArchiver creates an Archiver writing into crawlQueue's archive
// sub-area, encoding batches with codec (XMLCodec if nil).
func NewArchiver(crawlQueue *crawlqueue.CrawlQueue, codec document.Codec) *Archiver {
	if codec == nil {
		codec = document.XMLCodec{}
	}
	return &Archiver{crawlQueue: crawlQueue, codec: codec}
}

// WriteBatch encodes docs into the next sequence-numbered archive file.
func (a *Archiver) WriteBatch(docs []*document.Document) error {
	a.sequence++
	path := a.crawlQueue.ArchivePath(a.sequence)
	return writeBatchFile(path, docs, a.codec)
}

// WriteCommitMarker appends a zero-document marker file recording that
// a commit happened after the most recently written batch, so a reader
// replaying the archive can find commit boundaries.
func (a *Archiver) WriteCommitMarker() error {
	a.sequence++
	path := a.crawlQueue.ArchivePath(a.sequence)
	return writeBatchFile(path, nil, a.codec)
}

func writeBatchFile(path string, docs []*document.Document, codec document.Codec) error {
	type entry struct {
		data []byte
	}
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		data, err := codec.Encode(doc)
		if err != nil {
			return fmt.Errorf("publish: archive encode: %w", err)
		}
		entries = append(entries, entry{data: data})
	}

	out := []byte("<batch>\n")
	for _, e := range entries {
		out = append(out, e.data...)
		out = append(out, '\n')
	}
	out = append(out, []byte("</batch>\n")...)

	return writeFileAtomic(path, out)
}

// writeFileAtomic writes data to path via a temp-file-then-rename,
// mirroring crawlqueue's own on-disk staging discipline.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
