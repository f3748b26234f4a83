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

package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

func ptrInt(i int) *int          { return &i }
func ptrFloat(f float64) *float64 { return &f }

func buildThirdPartyHeavyGraph() *types.Graph {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "app.a", Type: types.TypeInternal})
	g.AddNode(&types.Node{ID: "app.b", Type: types.TypeInternal})
	g.AddNode(&types.Node{ID: types.ThirdPartyNodeID("requests"), Type: types.TypeThirdParty})
	g.AddEdge("app.a", types.ThirdPartyNodeID("requests"), nil)
	g.AddEdge("app.b", "app.a", nil)
	return g
}

// TestEvaluateS5MaxThirdPartyPercent is scenario S5: the graph holds one
// third-party package against two internal modules, so the third-party
// percentage is 50%; a 40% cap fails, a 60% cap passes.
func TestEvaluateS5MaxThirdPartyPercent(t *testing.T) {
	g := buildThirdPartyHeavyGraph()
	an := Analysis{
		Graph:  g,
		Global: types.GlobalMetrics{TotalInternal: 2},
	}

	failing := Config{Version: 1, Rules: []Rule{{
		ID: "r1", Name: "cap third party", RuleType: RuleMaxThirdPartyPct, Severity: SeverityError,
		Parameters: Parameters{MaxPercent: ptrFloat(40)},
	}}}
	res := Evaluate(failing, an, true, false)
	assert.False(t, res.Passed)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, SeverityError, res.Violations[0].Severity)

	passing := Config{Version: 1, Rules: []Rule{{
		ID: "r1", Name: "cap third party", RuleType: RuleMaxThirdPartyPct, Severity: SeverityError,
		Parameters: Parameters{MaxPercent: ptrFloat(60)},
	}}}
	res = Evaluate(passing, an, true, false)
	assert.True(t, res.Passed)
	assert.Empty(t, res.Violations)
}

func TestRuleEnabledDefaultsToTrueWhenOmitted(t *testing.T) {
	r := Rule{ID: "r1"}
	assert.True(t, r.IsEnabled())

	disabled := false
	r.Enabled = &disabled
	assert.False(t, r.IsEnabled())
}

func TestEvaluateSkipsDisabledRules(t *testing.T) {
	g := types.NewGraph()
	an := Analysis{Graph: g}
	disabled := false
	cfg := Config{Rules: []Rule{{ID: "r1", RuleType: RuleNoCircular, Enabled: &disabled}}}

	res := Evaluate(cfg, an, true, true)
	assert.Equal(t, 0, res.TotalRules)
	assert.True(t, res.Passed)
}

func TestEvalNoCircularOneViolationPerCycle(t *testing.T) {
	an := Analysis{
		Graph:  types.NewGraph(),
		Global: types.GlobalMetrics{CircularDependencies: [][]string{{"a", "b"}, {"c", "d", "e"}}},
	}
	cfg := Config{Rules: []Rule{{ID: "r1", Name: "no cycles", RuleType: RuleNoCircular, Severity: SeverityError}}}

	res := Evaluate(cfg, an, true, false)
	assert.False(t, res.Passed)
	assert.Len(t, res.Violations, 2)
}

func TestEvalMaxCouplingFlagsOverLimit(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "hub", Type: types.TypeInternal})
	g.AddNode(&types.Node{ID: "sink", Type: types.TypeInternal})
	g.AddEdge("hub", "sink", nil)
	an := Analysis{
		Graph: g,
		NodeInfo: map[string]*types.NodeMetrics{
			"hub":  {Efferent: 5},
			"sink": {Efferent: 0},
		},
	}
	cfg := Config{Rules: []Rule{{
		ID: "r1", Name: "max efferent", RuleType: RuleMaxCoupling, Severity: SeverityWarning,
		Parameters: Parameters{MaxEfferent: ptrInt(2)},
	}}}

	res := Evaluate(cfg, an, false, true)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, []string{"hub"}, res.Violations[0].AffectedModules)
	assert.False(t, res.Passed)
}

func TestEvalMaxCouplingFailOnWarningFalseStillReportsViolation(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "hub", Type: types.TypeInternal})
	an := Analysis{
		Graph:    g,
		NodeInfo: map[string]*types.NodeMetrics{"hub": {Efferent: 10}},
	}
	cfg := Config{Rules: []Rule{{
		ID: "r1", Name: "max efferent", RuleType: RuleMaxCoupling, Severity: SeverityWarning,
		Parameters: Parameters{MaxEfferent: ptrInt(2)},
	}}}

	res := Evaluate(cfg, an, false, false)
	assert.Len(t, res.Violations, 1)
	assert.True(t, res.Passed, "failOnWarning=false must not fail the run even with a warning violation")
}
