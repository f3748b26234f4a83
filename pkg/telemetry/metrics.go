// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry holds the Prometheus metrics for the analysis and
// fitness-check pipelines.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsAnalysis struct {
	once sync.Once

	filesParsed          *prometheus.CounterVec
	parseErrors          prometheus.Counter
	resolutionDegraded   prometheus.Counter
	cyclesDetected       prometheus.Counter
	fitnessRuleEvaluated *prometheus.CounterVec
	fitnessViolations    *prometheus.CounterVec

	parseDuration    prometheus.Histogram
	resolveDuration  prometheus.Histogram
	metricsDuration  prometheus.Histogram
	clusterDuration  prometheus.Histogram
	fitnessDuration  prometheus.Histogram
}

var m metricsAnalysis

func (m *metricsAnalysis) init() {
	m.once.Do(func() {
		m.filesParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charon_files_parsed_total", Help: "Source files successfully parsed, by language.",
		}, []string{"language"})
		m.parseErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charon_parse_errors_total", Help: "Files that failed to parse.",
		})
		m.resolutionDegraded = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charon_resolution_degradations_total", Help: "Internal resolutions degraded to external for an unknown module id.",
		})
		m.cyclesDetected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charon_cycles_detected_total", Help: "Simple cycles found across all analysis runs.",
		})
		m.fitnessRuleEvaluated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charon_fitness_rules_evaluated_total", Help: "Fitness rules evaluated, by rule type.",
		}, []string{"rule_type"})
		m.fitnessViolations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charon_fitness_violations_total", Help: "Fitness violations found, by severity.",
		}, []string{"severity"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "charon_parse_seconds", Help: "Parse stage duration.", Buckets: buckets})
		m.resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "charon_resolve_seconds", Help: "Resolve stage duration.", Buckets: buckets})
		m.metricsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "charon_metrics_seconds", Help: "Metrics stage duration.", Buckets: buckets})
		m.clusterDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "charon_cluster_seconds", Help: "Clustering stage duration.", Buckets: buckets})
		m.fitnessDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "charon_fitness_seconds", Help: "Fitness evaluation duration.", Buckets: buckets})

		prometheus.MustRegister(
			m.filesParsed, m.parseErrors, m.resolutionDegraded, m.cyclesDetected,
			m.fitnessRuleEvaluated, m.fitnessViolations,
			m.parseDuration, m.resolveDuration, m.metricsDuration, m.clusterDuration, m.fitnessDuration,
		)
	})
}

// RecordFileParsed increments the per-language parsed-file counter.
func RecordFileParsed(language string) {
	m.init()
	m.filesParsed.WithLabelValues(language).Inc()
}

// RecordParseError increments the parse-error counter.
func RecordParseError() {
	m.init()
	m.parseErrors.Inc()
}

// RecordResolutionDegradation increments the degraded-resolution counter.
func RecordResolutionDegradation() {
	m.init()
	m.resolutionDegraded.Inc()
}

// RecordCyclesDetected adds n to the cycles-detected counter.
func RecordCyclesDetected(n int) {
	if n <= 0 {
		return
	}
	m.init()
	m.cyclesDetected.Add(float64(n))
}

// RecordFitnessRuleEvaluated increments the per-rule-type evaluation counter.
func RecordFitnessRuleEvaluated(ruleType string) {
	m.init()
	m.fitnessRuleEvaluated.WithLabelValues(ruleType).Inc()
}

// RecordFitnessViolation increments the per-severity violation counter.
func RecordFitnessViolation(severity string) {
	m.init()
	m.fitnessViolations.WithLabelValues(severity).Inc()
}

// ObserveParseDuration records a parse-stage duration observation in seconds.
func ObserveParseDuration(seconds float64) { m.init(); m.parseDuration.Observe(seconds) }

// ObserveResolveDuration records a resolve-stage duration observation in seconds.
func ObserveResolveDuration(seconds float64) { m.init(); m.resolveDuration.Observe(seconds) }

// ObserveMetricsDuration records a metrics-stage duration observation in seconds.
func ObserveMetricsDuration(seconds float64) { m.init(); m.metricsDuration.Observe(seconds) }

// ObserveClusterDuration records a clustering-stage duration observation in seconds.
func ObserveClusterDuration(seconds float64) { m.init(); m.clusterDuration.Observe(seconds) }

// ObserveFitnessDuration records a fitness-evaluation duration observation in seconds.
func ObserveFitnessDuration(seconds float64) { m.init(); m.fitnessDuration.Observe(seconds) }
