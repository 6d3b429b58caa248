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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/conveyor/internal/config"
)

// defaultConfigYAML is what `conveyor init` writes, with the documented
// defaults spelled out so an operator can see and edit every knob.
const defaultConfigYAML = `# conveyor crawl configuration
run_sleep_between: "60m"
run_sleep_startup_delay: 0
phase_list: ["all"]
queue_wait_timeout: 5
working_dir: "data/crawler"
full_interval_minutes: 1440
incremental_interval_minutes: 60

extract:
  queue:
    queue_length: 1000
    thread_count: 1
  crawl_max_pages: 0
  follow: []
  ignore: []
  id_value_prefix: "doc"
  start_locations: []

transform:
  queue_length: 1000
  thread_count: 1

publish:
  queue:
    queue_length: 1000
    thread_count: 1
  pipe_line: ["solr"]
  upload_enabled: true
  feed_batch_count: 100
  feed_commit_count: 10000

solr:
  url: "http://localhost:8983/solr/documents"
  timeout_secs: 30
`

// loadConfig reads and validates path. Callers at the cmd boundary wrap
// a non-nil error into a *errors.UserError before exiting.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	// Sanity check the embedded template itself before writing it out.
	var probe map[string]any
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &probe); err != nil {
		return fmt.Errorf("internal: default config template is invalid yaml: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
