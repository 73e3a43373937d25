// Copyright 2025 Philipp Hossner
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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records configuration engine activity.
//
// A nil *EngineMetrics is valid and records nothing.
type EngineMetrics struct {
	sourceLoads      *prometheus.CounterVec
	sourceLoadErrors *prometheus.CounterVec
	persists         *prometheus.CounterVec
	migrations       *prometheus.CounterVec
	schemaVersion    *prometheus.GaugeVec
	loadDuration     prometheus.Histogram
}

// NewEngineMetrics creates and registers the engine metrics with registry.
func NewEngineMetrics(registry prometheus.Registerer) *EngineMetrics {
	return &EngineMetrics{
		sourceLoads: NewCounterVec(registry,
			"solo_config_source_loads_total",
			"Total number of configuration source loads",
			[]string{"source"}),
		sourceLoadErrors: NewCounterVec(registry,
			"solo_config_source_load_errors_total",
			"Total number of failed configuration source loads",
			[]string{"source"}),
		persists: NewCounterVec(registry,
			"solo_config_persist_total",
			"Total number of configuration documents written back",
			[]string{"source"}),
		migrations: NewCounterVec(registry,
			"solo_schema_migrations_applied_total",
			"Total number of documents upgraded to a newer schema version",
			[]string{"schema"}),
		schemaVersion: NewGaugeVec(registry,
			"solo_schema_version",
			"Schema version documents were last migrated to",
			[]string{"schema"}),
		loadDuration: NewHistogramWithBuckets(registry,
			"solo_config_load_duration_seconds",
			"Duration of configuration source loads",
			DurationBuckets()),
	}
}

// RecordSourceLoad records one source load and its outcome.
func (m *EngineMetrics) RecordSourceLoad(source string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.sourceLoads.WithLabelValues(source).Inc()
	if err != nil {
		m.sourceLoadErrors.WithLabelValues(source).Inc()
	}
	m.loadDuration.Observe(duration.Seconds())
}

// RecordPersist records a document written back by source.
func (m *EngineMetrics) RecordPersist(source string) {
	if m == nil {
		return
	}
	m.persists.WithLabelValues(source).Inc()
}

// RecordMigration records a document of schema upgraded from one version
// to another.
func (m *EngineMetrics) RecordMigration(schema string, _, to int) {
	if m == nil {
		return
	}
	m.migrations.WithLabelValues(schema).Inc()
	m.schemaVersion.WithLabelValues(schema).Set(float64(to))
}
