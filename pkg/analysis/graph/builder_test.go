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

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// TestBuildS1RelativePythonImport is scenario S1: app/main.py imports
// app/utils.py's helper across packages.
func TestBuildS1RelativePythonImport(t *testing.T) {
	a := types.NewDependencyAnalysis("app")
	a.ModuleMetadata["app.main"] = types.ModuleMetadata{Language: types.LangPython, FilePath: "app/main.py"}
	a.ModuleMetadata["app.utils"] = types.ModuleMetadata{Language: types.LangPython, FilePath: "app/utils.py"}
	a.Dependencies["app.main"] = map[string]bool{"app.utils": true}
	a.ImportDetails[[2]string{"app.main", "app.utils"}] = []string{"helper"}

	g := Build(a)

	require.Len(t, g.Nodes, 2)
	assert.True(t, g.HasEdge("app.main", "app.utils"))
	assert.Equal(t, []string{"helper"}, g.Edges[0].Imports)
	assert.Equal(t, []string{"app.main", "app.utils"}, g.InternalNodeIDs())
}

// TestBuildThirdPartyNodeCreatedOnce checks that an external target gets
// exactly one third_party node regardless of how many internal modules
// depend on it (invariant 2: no internal node has the third_party prefix,
// every third-party node does).
func TestBuildThirdPartyNodeCreatedOnce(t *testing.T) {
	a := types.NewDependencyAnalysis("proj")
	a.ModuleMetadata["a"] = types.ModuleMetadata{Language: types.LangPython}
	a.ModuleMetadata["b"] = types.ModuleMetadata{Language: types.LangPython}
	pkg := types.ThirdPartyNodeID("requests")
	a.Dependencies["a"] = map[string]bool{pkg: true}
	a.Dependencies["b"] = map[string]bool{pkg: true}

	g := Build(a)

	require.Contains(t, g.Nodes, pkg)
	assert.Equal(t, types.TypeThirdParty, g.Nodes[pkg].Type)
	for _, id := range g.InternalNodeIDs() {
		assert.NotContains(t, id, types.ThirdPartyPrefix)
	}
	assert.True(t, g.HasEdge("a", pkg))
	assert.True(t, g.HasEdge("b", pkg))
}

func TestBuildEmptyAnalysisYieldsEmptyGraph(t *testing.T) {
	a := types.NewDependencyAnalysis("empty")
	g := Build(a)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}
