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

package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgressConfigDisabledOutsideTTY(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		quiet      bool
	}{
		{"default flags, stderr is not a TTY in test", false, false},
		{"quiet mode", false, true},
		{"json output", true, false},
		{"json and quiet combined", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newProgressConfig(tt.jsonOutput, tt.quiet, false)
			assert.False(t, cfg.Enabled)
			assert.Equal(t, os.Stderr, cfg.Writer)
		})
	}
}

func TestNewProgressConfigPropagatesNoColor(t *testing.T) {
	cfg := newProgressConfig(false, false, true)
	assert.True(t, cfg.NoColor)
}

func TestNewSpinnerDisabledReturnsNil(t *testing.T) {
	cfg := ProgressConfig{Enabled: false}
	assert.Nil(t, newSpinner(cfg, "crawling"))
}

func TestNewSpinnerEnabledReturnsUsableBar(t *testing.T) {
	cfg := ProgressConfig{Enabled: true, Writer: os.Stderr}
	bar := newSpinner(cfg, "crawling")
	if assert.NotNil(t, bar) {
		assert.NoError(t, bar.Add(1))
		assert.NoError(t, bar.Finish())
	}
}
