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

// Package cluster implements Louvain community detection and the package
// suggestion logic of §4.6.
package cluster

import (
	"math/rand"
	"sort"
)

// louvainSeed fixes the deterministic tie-break/shuffle order (§4.6:
// "seed fixed at 42").
const louvainSeed = 42

// weightedGraph is an undirected, weighted adjacency representation used
// only for community detection.
type weightedGraph struct {
	nodes   []string
	index   map[string]int
	adj     []map[int]float64
	degree  []float64
	totalW  float64
}

func newWeightedGraph(nodes []string, edges map[[2]string]float64) *weightedGraph {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n] = i
	}
	g := &weightedGraph{
		nodes:  nodes,
		index:  idx,
		adj:    make([]map[int]float64, len(nodes)),
		degree: make([]float64, len(nodes)),
	}
	for i := range g.adj {
		g.adj[i] = make(map[int]float64)
	}
	for pair, w := range edges {
		a, okA := idx[pair[0]]
		b, okB := idx[pair[1]]
		if !okA || !okB || a == b {
			continue
		}
		g.adj[a][b] += w
		g.adj[b][a] += w
		g.degree[a] += w
		g.degree[b] += w
		g.totalW += w
	}
	return g
}

// Louvain runs a single-level-then-aggregate Louvain community detection
// pass over an undirected weighted projection (§4.6). It returns, for
// each original node, its assigned community id. It always returns a
// map (empty when there are no nodes) and never returns nil.
func Louvain(nodes []string, edges map[[2]string]float64, resolution float64) map[string]int {
	if len(nodes) == 0 {
		return map[string]int{}
	}
	if len(edges) == 0 {
		out := make(map[string]int, len(nodes))
		for i, n := range nodes {
			out[n] = i
		}
		return out
	}

	g := newWeightedGraph(nodes, edges)
	rng := rand.New(rand.NewSource(louvainSeed))

	// community[i] = current community id of original-graph node i.
	community := make([]int, len(nodes))
	for i := range community {
		community[i] = i
	}

	level := g
	levelMembers := make([][]int, len(nodes))
	for i := range levelMembers {
		levelMembers[i] = []int{i}
	}

	for pass := 0; pass < 20; pass++ {
		assign, improved := louvainLocalMoving(level, resolution, rng)
		if !improved {
			break
		}
		// Map back to original nodes.
		newCommunityOf := make(map[int]int)
		for localID, members := range levelMembers {
			c := assign[localID]
			for _, orig := range members {
				newCommunityOf[orig] = c
			}
		}
		for i := range community {
			if c, ok := newCommunityOf[i]; ok {
				community[i] = c
			}
		}

		level, levelMembers = aggregate(level, assign, levelMembers)
		if len(level.nodes) <= 1 {
			break
		}
	}

	// Renumber communities to small dense ints, deterministically by
	// sorted representative node name.
	return renumber(nodes, community)
}

// louvainLocalMoving performs one level of the Louvain local-moving
// phase: repeatedly move each node into the neighboring community that
// most increases modularity gain, until no move improves it.
func louvainLocalMoving(g *weightedGraph, resolution float64, rng *rand.Rand) ([]int, bool) {
	n := len(g.nodes)
	assign := make([]int, n)
	commTotDegree := make([]float64, n)
	for i := 0; i < n; i++ {
		assign[i] = i
		commTotDegree[i] = g.degree[i]
	}

	order := rng.Perm(n)
	improvedAny := false

	for iter := 0; iter < 50; iter++ {
		moved := false
		for _, v := range order {
			oldC := assign[v]
			commTotDegree[oldC] -= g.degree[v]

			neighborWeight := make(map[int]float64)
			for u, w := range g.adj[v] {
				neighborWeight[assign[u]] += w
			}

			bestC := oldC
			bestGain := gain(neighborWeight[oldC], commTotDegree[oldC], g.degree[v], g.totalW, resolution)
			candidates := make([]int, 0, len(neighborWeight))
			for c := range neighborWeight {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)
			for _, c := range candidates {
				if c == oldC {
					continue
				}
				gn := gain(neighborWeight[c], commTotDegree[c], g.degree[v], g.totalW, resolution)
				if gn > bestGain {
					bestGain = gn
					bestC = c
				}
			}

			commTotDegree[bestC] += g.degree[v]
			assign[v] = bestC
			if bestC != oldC {
				moved = true
				improvedAny = true
			}
		}
		if !moved {
			break
		}
	}

	return assign, improvedAny
}

func gain(edgesToComm, commTotDegree, nodeDegree, totalW, resolution float64) float64 {
	if totalW == 0 {
		return 0
	}
	return edgesToComm - resolution*commTotDegree*nodeDegree/(2*totalW)
}

// aggregate collapses each community from the previous level into a
// single super-node, producing the next level's weighted graph.
func aggregate(g *weightedGraph, assign []int, prevMembers [][]int) (*weightedGraph, [][]int) {
	commToLocal := make(map[int]int)
	var newMembers [][]int
	for i := range g.nodes {
		c := assign[i]
		local, ok := commToLocal[c]
		if !ok {
			local = len(newMembers)
			commToLocal[c] = local
			newMembers = append(newMembers, nil)
		}
		newMembers[local] = append(newMembers[local], prevMembers[i]...)
	}

	newNodes := make([]string, len(newMembers))
	for i := range newNodes {
		newNodes[i] = ""
	}
	newEdges := make(map[[2]string]float64)
	for a := range g.nodes {
		ca := commToLocal[assign[a]]
		for b, w := range g.adj[a] {
			cb := commToLocal[assign[b]]
			if ca == cb {
				continue
			}
			key := edgeKey(idxName(ca), idxName(cb))
			newEdges[key] += w / 2 // each undirected edge counted from both ends
		}
	}

	ng := &weightedGraph{
		nodes:  make([]string, len(newMembers)),
		index:  make(map[string]int, len(newMembers)),
		adj:    make([]map[int]float64, len(newMembers)),
		degree: make([]float64, len(newMembers)),
	}
	for i := range ng.nodes {
		ng.nodes[i] = idxName(i)
		ng.index[ng.nodes[i]] = i
		ng.adj[i] = make(map[int]float64)
	}
	for key, w := range newEdges {
		a := ng.index[key[0]]
		b := ng.index[key[1]]
		ng.adj[a][b] += w
		ng.adj[b][a] += w
		ng.degree[a] += w
		ng.degree[b] += w
		ng.totalW += w
	}

	return ng, newMembers
}

func idxName(i int) string {
	return "$agg" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// renumber assigns small dense community ids, 0-based, ordered by the
// lexicographically smallest member node name in each community (stable
// and deterministic regardless of map iteration order).
func renumber(nodes []string, community []int) map[string]int {
	groups := make(map[int][]string)
	for i, n := range nodes {
		c := community[i]
		groups[c] = append(groups[c], n)
	}
	type group struct {
		rep     string
		members []string
	}
	var gs []group
	for _, members := range groups {
		sort.Strings(members)
		gs = append(gs, group{rep: members[0], members: members})
	}
	sort.Slice(gs, func(i, j int) bool { return gs[i].rep < gs[j].rep })

	out := make(map[string]int, len(nodes))
	for id, g := range gs {
		for _, m := range g.members {
			out[m] = id
		}
	}
	return out
}
