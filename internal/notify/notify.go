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

// Package notify defines the operator-notification collaborator that
// stages and the TaskRunner call into on per-item failures and
// readiness-check failures. SMTP delivery is out of scope; the shipped
// Notifier logs structured events so a real mail sender can be dropped
// in behind the same interface.
package notify

import (
	"log/slog"
)

// Notifier is notified of operationally significant events a human
// operator may need to act on.
type Notifier interface {
	// ItemFailed reports a per-document failure in phase for document
	// id, caused by err. The document has already been dropped.
	ItemFailed(phase, id string, err error)

	// ReadinessFailed reports that TaskRunner's pre-crawl readiness
	// check failed for reason, aborting the crawl before it starts.
	ReadinessFailed(reason string, err error)

	// CrawlFinished reports a crawl's terminal outcome.
	CrawlFinished(crawlID int64, outcome string, err error)
}

// LogNotifier emits structured log events via slog instead of sending
// mail. It is the default Notifier until a real SMTP sender is wired
// in behind the same interface.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a LogNotifier writing to logger, or to
// slog.Default() if logger is nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ItemFailed(phase, id string, err error) {
	n.logger.Warn("conveyor.item.failed", "phase", phase, "id", id, "err", err)
}

func (n *LogNotifier) ReadinessFailed(reason string, err error) {
	n.logger.Error("conveyor.readiness.failed", "reason", reason, "err", err)
}

func (n *LogNotifier) CrawlFinished(crawlID int64, outcome string, err error) {
	if err != nil {
		n.logger.Error("conveyor.crawl.finished", "crawl_id", crawlID, "outcome", outcome, "err", err)
		return
	}
	n.logger.Info("conveyor.crawl.finished", "crawl_id", crawlID, "outcome", outcome)
}

var _ Notifier = (*LogNotifier)(nil)
