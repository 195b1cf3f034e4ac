/*
 * Copyright 2024 The Bundler Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics implements prometheus metrics for the archive builder and
// its cache stores
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace  = "bundler"
	archiveSubsystem = "archive"
	cacheSubsystem   = "cache"
)

// Default histogram buckets, in seconds
var (
	defaultBuckets = []float64{0.05, 0.1, 0.5, 1, 5, 10, 20}
)

// BuildsTotal is a Counter of archive builds by their final outcome
// ("success", "cached", "error")
var BuildsTotal *prometheus.CounterVec

// BuildAttempts is a Counter of individual build attempts by result
// ("success", "retry", "error")
var BuildAttempts *prometheus.CounterVec

// BuildDuration is a Histogram of archive build durations in seconds
var BuildDuration prometheus.Histogram

// BuildWrittenBytes is a Counter of bytes written to finished containers
var BuildWrittenBytes prometheus.Counter

// BuildSourceBytes is a Counter of pre-compression input bytes processed
var BuildSourceBytes prometheus.Counter

// StreamedEntries is a Counter of entries routed through spool files
var StreamedEntries prometheus.Counter

// CacheEvents is a Counter of events observed on a cache store, labeled by
// cache name and event ("hit", "kmiss", "expired", "store", "error", "reap")
var CacheEvents *prometheus.CounterVec

func init() {

	BuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: archiveSubsystem,
			Name:      "builds_total",
			Help:      "Count of archive builds by outcome",
		},
		[]string{"outcome"},
	)

	BuildAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: archiveSubsystem,
			Name:      "build_attempts_total",
			Help:      "Count of individual archive build attempts by result",
		},
		[]string{"result"},
	)

	BuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: archiveSubsystem,
			Name:      "build_duration_seconds",
			Help:      "Histogram of archive build durations",
			Buckets:   defaultBuckets,
		},
	)

	BuildWrittenBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: archiveSubsystem,
			Name:      "written_bytes_total",
			Help:      "Count of compressed bytes written to finished containers",
		},
	)

	BuildSourceBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: archiveSubsystem,
			Name:      "source_bytes_total",
			Help:      "Count of pre-compression input bytes processed",
		},
	)

	StreamedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: archiveSubsystem,
			Name:      "streamed_entries_total",
			Help:      "Count of entries routed through spool files",
		},
	)

	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "events_total",
			Help:      "Count of events performed on a bundler cache",
		},
		[]string{"cache_name", "event"},
	)

	prometheus.MustRegister(BuildsTotal, BuildAttempts, BuildDuration,
		BuildWrittenBytes, BuildSourceBytes, StreamedEntries, CacheEvents)
}
