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

// Package metrics exposes the connector's Prometheus counters and
// histograms.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type pipelineMetrics struct {
	once sync.Once

	extracted  prometheus.Counter
	transformed prometheus.Counter
	published   prometheus.Counter
	dropped     *prometheus.CounterVec

	batchesAdded prometheus.Counter
	commits      prometheus.Counter
	docsMaxCapped prometheus.Counter

	extractDuration   prometheus.Histogram
	transformDuration prometheus.Histogram
	publishDuration   prometheus.Histogram
}

var m pipelineMetrics

func (p *pipelineMetrics) init() {
	p.once.Do(func() {
		p.extracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "conveyor_documents_extracted_total", Help: "Documents written to the extract sub-area"})
		p.transformed = prometheus.NewCounter(prometheus.CounterOpts{Name: "conveyor_documents_transformed_total", Help: "Documents successfully run through the transform pipeline"})
		p.published = prometheus.NewCounter(prometheus.CounterOpts{Name: "conveyor_documents_published_total", Help: "Documents successfully handed to the publisher registry"})
		p.dropped = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "conveyor_documents_dropped_total", Help: "Documents dropped due to a per-item failure"}, []string{"phase"})

		p.batchesAdded = prometheus.NewCounter(prometheus.CounterOpts{Name: "conveyor_publisher_add_calls_total", Help: "Index add operations issued"})
		p.commits = prometheus.NewCounter(prometheus.CounterOpts{Name: "conveyor_publisher_commits_total", Help: "Index commit operations issued"})
		p.docsMaxCapped = prometheus.NewCounter(prometheus.CounterOpts{Name: "conveyor_publisher_max_cap_dropped_total", Help: "Documents silently dropped at the publisher's max-document cap"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		p.extractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "conveyor_extract_seconds", Help: "Per-document extract phase duration", Buckets: buckets})
		p.transformDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "conveyor_transform_seconds", Help: "Per-document transform phase duration", Buckets: buckets})
		p.publishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "conveyor_publish_seconds", Help: "Per-document publish phase duration", Buckets: buckets})

		prometheus.MustRegister(
			p.extracted, p.transformed, p.published, p.dropped,
			p.batchesAdded, p.commits, p.docsMaxCapped,
			p.extractDuration, p.transformDuration, p.publishDuration,
		)
	})
}

// RecordExtracted increments the extracted-document counter.
func RecordExtracted() { m.init(); m.extracted.Inc() }

// RecordTransformed increments the transformed-document counter.
func RecordTransformed() { m.init(); m.transformed.Inc() }

// RecordPublished increments the published-document counter.
func RecordPublished() { m.init(); m.published.Inc() }

// RecordDropped increments the dropped-document counter for phase.
func RecordDropped(phase string) { m.init(); m.dropped.WithLabelValues(phase).Inc() }

// RecordAdd increments the publisher add-call counter.
func RecordAdd() { m.init(); m.batchesAdded.Inc() }

// RecordCommit increments the publisher commit counter.
func RecordCommit() { m.init(); m.commits.Inc() }

// RecordMaxCapDropped increments the max-document-cap counter.
func RecordMaxCapDropped() { m.init(); m.docsMaxCapped.Inc() }

// ObserveExtractSeconds records one extract-phase duration sample.
func ObserveExtractSeconds(seconds float64) { m.init(); m.extractDuration.Observe(seconds) }

// ObserveTransformSeconds records one transform-phase duration sample.
func ObserveTransformSeconds(seconds float64) { m.init(); m.transformDuration.Observe(seconds) }

// ObservePublishSeconds records one publish-phase duration sample.
func ObservePublishSeconds(seconds float64) { m.init(); m.publishDuration.Observe(seconds) }
