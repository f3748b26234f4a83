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

package metrics

import (
	"sort"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// maxCycles caps elementary-circuit enumeration (§9's 10,000-cycle
// ceiling): pathological inputs with combinatorially many simple cycles
// stop contributing new ones past this count, and Truncated is set.
const maxCycles = 10000

// CycleResult is the outcome of FindCycles: the enumerated simple cycles
// (each a list of internal module ids in cycle order) plus whether the
// cap was hit.
type CycleResult struct {
	Cycles    [][]string
	Truncated bool
}

// FindCycles enumerates every elementary circuit in the graph restricted
// to internal nodes (§4.5.1), using Johnson's algorithm: for each
// candidate least-index start node, DFS the subgraph induced by nodes
// with id ≥ start, blocking revisits until a dead end unblocks them.
// A DFS/SCC pass alone only tells you a cycle exists somewhere in a
// component; it does not enumerate every elementary circuit, so it must
// not be substituted here.
func FindCycles(g *types.Graph) CycleResult {
	nodes := g.InternalNodeIDs()
	sort.Strings(nodes)
	index := make(map[string]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	adj := make([][]int, len(nodes))
	for i, id := range nodes {
		for _, succ := range g.Successors(id) {
			if j, ok := index[succ]; ok {
				adj[i] = append(adj[i], j)
			}
		}
	}

	res := CycleResult{}
	for s := 0; s < len(nodes) && !res.Truncated; s++ {
		blocked := make([]bool, len(nodes))
		blockMap := make(map[int]map[int]bool)
		var stack []int

		var unblock func(u int)
		unblock = func(u int) {
			blocked[u] = false
			for w := range blockMap[u] {
				delete(blockMap[u], w)
				if blocked[w] {
					unblock(w)
				}
			}
		}

		var circuit func(v int) bool
		circuit = func(v int) bool {
			found := false
			stack = append(stack, v)
			blocked[v] = true

			for _, w := range adj[v] {
				if w < s {
					continue
				}
				if w == s {
					cycle := make([]string, len(stack))
					for i, idx := range stack {
						cycle[i] = nodes[idx]
					}
					res.Cycles = append(res.Cycles, cycle)
					found = true
					if len(res.Cycles) >= maxCycles {
						res.Truncated = true
						stack = stack[:len(stack)-1]
						return true
					}
				} else if !blocked[w] {
					if circuit(w) {
						found = true
					}
					if res.Truncated {
						stack = stack[:len(stack)-1]
						return true
					}
				}
			}

			if found {
				unblock(v)
			} else {
				for _, w := range adj[v] {
					if w < s {
						continue
					}
					if blockMap[w] == nil {
						blockMap[w] = make(map[int]bool)
					}
					blockMap[w][v] = true
				}
			}
			stack = stack[:len(stack)-1]
			return found
		}

		circuit(s)
	}

	return res
}

// InCycle returns the set of internal module ids that appear in at least
// one simple cycle.
func InCycle(cycles [][]string) map[string]bool {
	in := make(map[string]bool)
	for _, c := range cycles {
		for _, id := range c {
			in[id] = true
		}
	}
	return in
}
