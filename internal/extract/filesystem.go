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
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kraklabs/conveyor/internal/document"
)

// FileParser turns the raw bytes of one file into a Document. The
// concrete HTML/file/CSV parsing implementation is an external
// collaborator; FilesystemDriver only owns the walk and the follow/
// ignore and max-document policy around it.
type FileParser interface {
	ParseFile(path string, data []byte) (*document.Document, error)
}

// FilesystemDriver walks one or more start directories, emitting a
// document for every file that survives the follow/ignore rules.
type FilesystemDriver struct {
	StartLocations []string
	FollowIgnore   *FollowIgnore
	Parser         FileParser
	MaxDocs        int
	Logger         *slog.Logger
}

// Discover implements Driver.
func (d *FilesystemDriver) Discover(ctx context.Context, emit EmitFunc) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	count := 0
	for _, root := range d.StartLocations {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if entry.IsDir() {
				return nil
			}
			if d.MaxDocs > 0 && count >= d.MaxDocs {
				return fs.SkipAll
			}
			if d.FollowIgnore != nil && !d.FollowIgnore.Allowed(path) {
				return nil
			}

			data, readErr := os.ReadFile(path)
			if readErr != nil {
				logger.Warn("conveyor.extract.fs.read.failed", "path", path, "err", readErr)
				return nil
			}
			doc, parseErr := d.Parser.ParseFile(path, data)
			if parseErr != nil {
				logger.Warn("conveyor.extract.fs.parse.failed", "path", path, "err", parseErr)
				return nil
			}
			count++
			return emit(path, doc)
		})
		if err != nil {
			return fmt.Errorf("extract: walk %s: %w", root, err)
		}
	}
	return nil
}
