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

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForExtension(t *testing.T) {
	assert.Equal(t, LangPython, LanguageForExtension(".py"))
	assert.Equal(t, LangTypeScript, LanguageForExtension(".tsx"))
	assert.Equal(t, LangJavaScript, LanguageForExtension(".MJS"))
	assert.Equal(t, LangUnknown, LanguageForExtension(".txt"))
}

func TestThirdPartyNodeID(t *testing.T) {
	assert.Equal(t, "third_party.requests", ThirdPartyNodeID("requests"))
}

func TestGraphAddEdgeDedupesAndSuppressesSelfLoops(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "a", Type: TypeInternal})
	g.AddNode(&Node{ID: "b", Type: TypeInternal})

	g.AddEdge("a", "a", []string{"x"})
	assert.False(t, g.HasEdge("a", "a"), "self-loops must be suppressed")

	g.AddEdge("a", "b", []string{"helper"})
	g.AddEdge("a", "b", []string{"helper", "other"})
	require.True(t, g.HasEdge("a", "b"))
	assert.Len(t, g.Edges, 1)
	assert.ElementsMatch(t, []string{"helper", "other"}, g.Edges[0].Imports)
	assert.Equal(t, 2, g.Edges[0].Weight)

	// Invariant 4: Ca/Ce equal the published in/out adjacency counts.
	assert.Equal(t, []string{"b"}, g.Successors("a"))
	assert.Equal(t, []string{"a"}, g.Predecessors("b"))
}

func TestGraphInternalNodeIDsSortedAndFiltered(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "b.mod", Type: TypeInternal})
	g.AddNode(&Node{ID: "a.mod", Type: TypeInternal})
	g.AddNode(&Node{ID: ThirdPartyNodeID("requests"), Type: TypeThirdParty})

	assert.Equal(t, []string{"a.mod", "b.mod"}, g.InternalNodeIDs())
}

func TestGraphJSONRoundTrip(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "app.main", Type: TypeInternal})
	g.AddNode(&Node{ID: "app.utils", Type: TypeInternal})
	g.AddNode(&Node{ID: ThirdPartyNodeID("requests"), Type: TypeThirdParty})
	g.AddEdge("app.main", "app.utils", []string{"helper"})
	g.AddEdge("app.main", ThirdPartyNodeID("requests"), []string{"get"})

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var loaded Graph
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.ElementsMatch(t, g.InternalNodeIDs(), loaded.InternalNodeIDs())
	assert.True(t, loaded.HasEdge("app.main", "app.utils"))
	assert.Equal(t, []string{"app.utils", ThirdPartyNodeID("requests")}, sortedCopy(loaded.Successors("app.main")))
	assert.Equal(t, []string{"app.main"}, loaded.Predecessors("app.utils"))

	// Round-tripping again must reproduce byte-identical output (§8).
	data2, err := json.Marshal(&loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(data2))
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sortStrings(out)
	return out
}
