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

// Package config defines the connector's typed configuration surface,
// replacing the property-lookup-by-string-key pattern with fields
// populated once at startup and validated before any crawl begins.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PhaseName is one of the single-pass phase selections.
type PhaseName string

const (
	PhaseAll       PhaseName = "all"
	PhaseSnapshot  PhaseName = "snapshot"
	PhaseExtract   PhaseName = "extract"
	PhaseTransform PhaseName = "transform"
	PhasePublish   PhaseName = "publish"
)

// QueueConfig sizes one stage's bounded queue and worker pool.
type QueueConfig struct {
	Length      int `yaml:"queue_length"`
	ThreadCount int `yaml:"thread_count"`
}

// ExtractConfig configures the extract driver.
type ExtractConfig struct {
	Queue            QueueConfig `yaml:"queue"`
	CrawlMaxPages    int         `yaml:"crawl_max_pages"`
	PolitenessDelay  string      `yaml:"politeness_delay"`
	FollowRedirects  bool        `yaml:"follow_redirects"`
	CrawlAgentString string      `yaml:"crawl_agent_string"`
	ProxyHostName    string      `yaml:"proxy_host_name"`
	ProxyPortNumber  int         `yaml:"proxy_port_number"`
	ProxyAccount     string      `yaml:"proxy_account"`
	ProxyPassword    string      `yaml:"proxy_password"`
	CrawlJavascript  bool        `yaml:"crawl_javascript"`
	IDValuePrefix    string      `yaml:"id_value_prefix"`
	StartLocations   []string    `yaml:"start_locations"`
	Follow           []string    `yaml:"follow"`
	Ignore           []string    `yaml:"ignore"`
}

// PublishConfig configures the publish stage and its registry.
type PublishConfig struct {
	Queue                 QueueConfig `yaml:"queue"`
	PipeLine              []string    `yaml:"pipe_line"`
	UploadEnabled         bool        `yaml:"upload_enabled"`
	SaveFiles             bool        `yaml:"save_files"`
	OptimizeUponCompletion bool       `yaml:"optimize_upon_completion"`
	FeedMaximumCount      int         `yaml:"feed_maximum_count"`
	FeedBatchCount        int         `yaml:"feed_batch_count"`
	FeedCommitCount       int         `yaml:"feed_commit_count"`
}

// SolrConfig configures the Solr-compatible index client.
type SolrConfig struct {
	URL         string `yaml:"url"`
	Core        string `yaml:"core"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Config is the connector's full, typed configuration, loaded once at
// startup from YAML and never mutated during a crawl.
type Config struct {
	RunSleepBetween      string        `yaml:"run_sleep_between"`
	RunSleepStartupDelay int           `yaml:"run_sleep_startup_delay"`
	PhaseList            []PhaseName   `yaml:"phase_list"`
	QueueWaitTimeout      int          `yaml:"queue_wait_timeout"`
	WorkingDir           string        `yaml:"working_dir"`
	FullIntervalMinutes        int     `yaml:"full_interval_minutes"`
	IncrementalIntervalMinutes int     `yaml:"incremental_interval_minutes"`

	Extract ExtractConfig `yaml:"extract"`
	Publish PublishConfig `yaml:"publish"`
	Transform QueueConfig `yaml:"transform"`
	Solr    SolrConfig    `yaml:"solr"`
}

// DefaultConfig returns a Config with every documented default applied.
func DefaultConfig() Config {
	return Config{
		RunSleepBetween:      "60m",
		RunSleepStartupDelay: 0,
		PhaseList:            []PhaseName{PhaseAll},
		QueueWaitTimeout:      5,
		WorkingDir:           "data/crawler",
		FullIntervalMinutes:        24 * 60,
		IncrementalIntervalMinutes: 60,
		Extract: ExtractConfig{
			Queue: QueueConfig{Length: 1000, ThreadCount: 1},
		},
		Transform: QueueConfig{Length: 1000, ThreadCount: 1},
		Publish: PublishConfig{
			Queue:            QueueConfig{Length: 1000, ThreadCount: 1},
			UploadEnabled:    true,
			FeedBatchCount:   100,
			FeedCommitCount:  10000,
			FeedMaximumCount: 0,
		},
	}
}

// Load reads and parses a YAML config file, applying defaults first so
// any key the file omits keeps its documented default.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field the core reads before a crawl may start.
// A failure here is a configuration error per the error-handling design:
// fatal at initialization, surfaced to TaskRunner, no crawl starts.
func (c Config) Validate() error {
	if _, err := c.ReviewInterval(); err != nil {
		return fmt.Errorf("run_sleep_between: %w", err)
	}
	if len(c.PhaseList) == 0 {
		return fmt.Errorf("phase_list: must name at least one phase")
	}
	for _, p := range c.PhaseList {
		switch p {
		case PhaseAll, PhaseSnapshot, PhaseExtract, PhaseTransform, PhasePublish:
		default:
			return fmt.Errorf("phase_list: unrecognized phase %q", p)
		}
	}
	if c.WorkingDir == "" {
		return fmt.Errorf("working_dir: must not be empty")
	}
	if c.Extract.Queue.Length <= 0 {
		return fmt.Errorf("extract.queue.queue_length: must be positive")
	}
	if c.Transform.Length <= 0 {
		return fmt.Errorf("transform.queue_length: must be positive")
	}
	if c.Publish.Queue.Length <= 0 {
		return fmt.Errorf("publish.queue.queue_length: must be positive")
	}
	if c.Publish.UploadEnabled && len(c.Publish.PipeLine) == 0 {
		return fmt.Errorf("publish.pipe_line: must name at least one publisher when upload is enabled")
	}
	return nil
}

// ReviewInterval parses RunSleepBetween, accepting either a bare integer
// number of minutes or an "Nm" suffix form.
func (c Config) ReviewInterval() (time.Duration, error) {
	s := strings.TrimSpace(c.RunSleepBetween)
	if s == "" {
		return 0, fmt.Errorf("must not be empty")
	}
	s = strings.TrimSuffix(s, "m")
	minutes, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", c.RunSleepBetween, err)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("must be positive, got %q", c.RunSleepBetween)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// FullInterval returns the configured minimum spacing between full
// crawls, defaulting to 24 hours.
func (c Config) FullInterval() time.Duration {
	if c.FullIntervalMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.FullIntervalMinutes) * time.Minute
}

// IncrementalInterval returns the configured minimum spacing between
// incremental crawls, defaulting to 1 hour.
func (c Config) IncrementalInterval() time.Duration {
	if c.IncrementalIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.IncrementalIntervalMinutes) * time.Minute
}

// ServiceStatePath returns the path of the service-timer's persisted
// state file, rooted under WorkingDir.
func (c Config) ServiceStatePath() string {
	return filepath.Join(c.WorkingDir, "service-timer.json")
}

// PollTimeout returns the per-poll timeout applied between stage queues.
func (c Config) PollTimeout() time.Duration {
	if c.QueueWaitTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.QueueWaitTimeout) * time.Second
}

// SinglePass reports whether the configured phase list is anything other
// than "all", which selects single-pass command mode over service mode.
func (c Config) SinglePass() bool {
	return !(len(c.PhaseList) == 1 && c.PhaseList[0] == PhaseAll)
}

// MaxDocs returns the feed's maximum document cap; zero means unlimited.
func (c PublishConfig) MaxDocs() int {
	if c.FeedMaximumCount <= 0 {
		return 0
	}
	return c.FeedMaximumCount
}

// BatchSize returns the configured batch threshold, defaulting to 100.
func (c PublishConfig) BatchSize() int {
	if c.FeedBatchCount <= 0 {
		return 100
	}
	return c.FeedBatchCount
}

// CommitEvery returns the configured commit cadence, defaulting to 10000.
func (c PublishConfig) CommitEvery() int {
	if c.FeedCommitCount <= 0 {
		return 10000
	}
	return c.FeedCommitCount
}
