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
	"fmt"

	"github.com/gobwas/glob"
)

// FollowIgnore decides whether a discovered locator should be visited: it
// must match at least one follow pattern (or follow is empty, meaning
// "match everything") and must not match any ignore pattern.
type FollowIgnore struct {
	follow []glob.Glob
	ignore []glob.Glob
}

// NewFollowIgnore compiles the configured follow/ignore glob patterns.
// An empty follow list means every location is a candidate.
func NewFollowIgnore(follow, ignore []string) (*FollowIgnore, error) {
	fi := &FollowIgnore{}
	var err error
	if fi.follow, err = compileAll(follow); err != nil {
		return nil, fmt.Errorf("extract: follow pattern: %w", err)
	}
	if fi.ignore, err = compileAll(ignore); err != nil {
		return nil, fmt.Errorf("extract: ignore pattern: %w", err)
	}
	return fi, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// Allowed reports whether locator should be visited.
func (fi *FollowIgnore) Allowed(locator string) bool {
	if len(fi.follow) > 0 && !matchAny(fi.follow, locator) {
		return false
	}
	return !matchAny(fi.ignore, locator)
}

func matchAny(patterns []glob.Glob, s string) bool {
	for _, p := range patterns {
		if p.Match(s) {
			return true
		}
	}
	return false
}
