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

package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// These counters are process-global (registered once via sync.Once), so
// assertions compare deltas rather than absolute values to stay correct
// regardless of test execution order.
func TestRecordFileParsedIncrementsPerLanguage(t *testing.T) {
	m.init()
	before := testutil.ToFloat64(m.filesParsed.WithLabelValues("python"))
	RecordFileParsed("python")
	after := testutil.ToFloat64(m.filesParsed.WithLabelValues("python"))
	assert.Equal(t, before+1, after)
}

func TestRecordCyclesDetectedSkipsNonPositive(t *testing.T) {
	m.init()
	before := testutil.ToFloat64(m.cyclesDetected)
	RecordCyclesDetected(0)
	RecordCyclesDetected(-3)
	assert.Equal(t, before, testutil.ToFloat64(m.cyclesDetected))

	RecordCyclesDetected(2)
	assert.Equal(t, before+2, testutil.ToFloat64(m.cyclesDetected))
}

func TestRecordFitnessViolationBySeverity(t *testing.T) {
	m.init()
	before := testutil.ToFloat64(m.fitnessViolations.WithLabelValues("error"))
	RecordFitnessViolation("error")
	assert.Equal(t, before+1, testutil.ToFloat64(m.fitnessViolations.WithLabelValues("error")))
}

func TestObserveDurationsDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserveParseDuration(0.01)
		ObserveResolveDuration(0.02)
		ObserveMetricsDuration(0.03)
		ObserveClusterDuration(0.04)
		ObserveFitnessDuration(0.05)
	})
}
