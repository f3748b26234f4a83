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

package refactor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// TestAnalyzeS3DualSuggestionOnMutualImport is scenario S3: a.py and b.py
// import each other, producing both an Inappropriate Intimacy suggestion
// (from the bidirectional edge) and a Circular Dependency suggestion
// (from the 2-cycle).
func TestAnalyzeS3DualSuggestionOnMutualImport(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "a", Type: types.TypeInternal})
	g.AddNode(&types.Node{ID: "b", Type: types.TypeInternal})
	g.AddEdge("a", "b", []string{"b"})
	g.AddEdge("b", "a", []string{"a"})

	suggestions := Analyze(g, [][]string{{"a", "b"}})

	var patterns []types.RefactoringPattern
	for _, s := range suggestions {
		patterns = append(patterns, s.Pattern)
	}
	assert.Contains(t, patterns, types.PatternInappropriateIntimacy)
	assert.Contains(t, patterns, types.PatternCircularDependency)

	summary := Summarize(g, [][]string{{"a", "b"}})
	assert.Equal(t, len(suggestions), summary.TotalSuggestions)
	assert.Equal(t, 2, summary.ModulesAnalyzed)
}

func TestDetectGodObjectSeverityEscalatesAtTwentyFive(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "hub", Type: types.TypeInternal})
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("dep%d", i)
		g.AddNode(&types.Node{ID: id, Type: types.TypeInternal})
		g.AddEdge("hub", id, nil)
	}

	suggestions := detectGodObjects(g, g.InternalNodeIDs())
	assert.Len(t, suggestions, 1)
	assert.Equal(t, types.SeverityCritical, suggestions[0].Severity)
	assert.Equal(t, types.PatternGodObject, suggestions[0].Pattern)
}

func TestDetectPotentialDeadCodeFlagsNoIncomingEdges(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "entry", Type: types.TypeInternal})
	g.AddNode(&types.Node{ID: "used", Type: types.TypeInternal})
	g.AddEdge("entry", "used", nil)

	suggestions := detectPotentialDeadCode(g, g.InternalNodeIDs())
	assert.Len(t, suggestions, 1)
	assert.Equal(t, "entry", suggestions[0].Module)
	assert.Equal(t, types.SeverityInfo, suggestions[0].Severity)
}

func TestDetectHubModulesRequiresTenDependents(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "core", Type: types.TypeInternal})
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("caller%d", i)
		g.AddNode(&types.Node{ID: id, Type: types.TypeInternal})
		g.AddEdge(id, "core", nil)
	}

	suggestions := detectHubModules(g, g.InternalNodeIDs())
	assert.Len(t, suggestions, 1)
	assert.Equal(t, "core", suggestions[0].Module)
}

func TestAnalyzeOrdersBySeverityThenModule(t *testing.T) {
	g := types.NewGraph()
	g.AddNode(&types.Node{ID: "z", Type: types.TypeInternal})
	g.AddNode(&types.Node{ID: "a", Type: types.TypeInternal})
	g.AddEdge("z", "a", []string{"a"})
	g.AddEdge("a", "z", []string{"z"})

	suggestions := Analyze(g, [][]string{{"a", "z"}})
	require := assert.New(t)
	require.NotEmpty(suggestions)
	require.Equal(types.SeverityCritical, suggestions[0].Severity)
}
