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

package cluster

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// DefaultResolution is Louvain's default resolution parameter (§4.6).
const DefaultResolution = 1.0

// Detect partitions internal nodes into communities and computes the
// cluster metrics and package suggestions of §4.6.
func Detect(g *types.Graph) ([]types.Cluster, []types.PackageSuggestion) {
	internal := g.InternalNodeIDs()
	if len(internal) == 0 {
		return nil, nil
	}

	undirectedWeights := make(map[[2]string]float64)
	for _, id := range internal {
		for _, succ := range g.Successors(id) {
			if !isInternalNode(g, succ) {
				continue
			}
			undirectedWeights[edgeKey(id, succ)] += 1
		}
	}

	assignment := Louvain(internal, undirectedWeights, DefaultResolution)
	if assignment == nil {
		assignment = make(map[string]int, len(internal))
		for i, id := range internal {
			assignment[id] = i
		}
	}

	members := make(map[int][]string)
	for _, id := range internal {
		c := assignment[id]
		members[c] = append(members[c], id)
	}

	totalDirectedEdges := len(g.Edges)

	var clusters []types.Cluster
	for commID, nodes := range members {
		sort.Strings(nodes)
		memberSet := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			memberSet[n] = true
		}

		internalEdges := 0
		externalEdges := 0
		for _, n := range nodes {
			for _, succ := range g.Successors(n) {
				if memberSet[succ] {
					internalEdges++
				} else {
					externalEdges++
				}
			}
			for _, pred := range g.Predecessors(n) {
				if !memberSet[pred] {
					externalEdges++
				}
			}
		}
		// Each internal edge was counted once (from the source side only).

		total := internalEdges + externalEdges
		cohesion := 0.0
		if total > 0 {
			cohesion = round3(float64(internalEdges) / float64(total))
		}

		modularityContribution := 0.0
		if totalDirectedEdges > 0 {
			degreeSum := 0
			for _, n := range nodes {
				degreeSum += len(g.Successors(n)) + len(g.Predecessors(n))
			}
			expected := math.Pow(float64(degreeSum), 2) / (4 * float64(totalDirectedEdges))
			modularityContribution = round3((float64(internalEdges) - expected) / float64(totalDirectedEdges))
		}

		avgInternalCoupling := 0.0
		if len(nodes) > 0 {
			avgInternalCoupling = round2(float64(internalEdges) / float64(len(nodes)))
		}

		isPackageCandidate := cohesion > 0.7 && externalEdges < internalEdges

		clusters = append(clusters, types.Cluster{
			ID:                      commID,
			Members:                 nodes,
			Size:                    len(nodes),
			InternalEdges:           internalEdges,
			ExternalEdges:           externalEdges,
			Cohesion:                cohesion,
			ModularityContribution:  modularityContribution,
			AvgInternalCoupling:     avgInternalCoupling,
			IsPackageCandidate:      isPackageCandidate,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].ID < clusters[j].ID
	})
	for i := range clusters {
		clusters[i].ID = i
	}

	var suggestions []types.PackageSuggestion
	for _, c := range clusters {
		if c.Size < 3 || !c.IsPackageCandidate {
			continue
		}
		name := commonDottedPrefix(c.Members)
		if name == "" {
			name = fmt.Sprintf("cluster_%d", c.ID)
		}
		suggestions = append(suggestions, types.PackageSuggestion{
			ClusterID:             c.ID,
			SuggestedPackageName:  name,
			Modules:                c.Members,
			Reason: fmt.Sprintf(
				"High cohesion (%.2f) with %d internal connections and only %d external dependencies",
				c.Cohesion, c.InternalEdges, c.ExternalEdges),
		})
	}

	return clusters, suggestions
}

func isInternalNode(g *types.Graph, id string) bool {
	n, ok := g.Nodes[id]
	return ok && n.Type == types.TypeInternal
}

func edgeKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// commonDottedPrefix finds the longest run of leading dot-separated
// segments shared by every member id (§4.6).
func commonDottedPrefix(members []string) string {
	if len(members) == 0 {
		return ""
	}
	split := make([][]string, len(members))
	minLen := -1
	for i, m := range members {
		split[i] = strings.Split(m, ".")
		if minLen < 0 || len(split[i]) < minLen {
			minLen = len(split[i])
		}
	}
	var prefix []string
	for i := 0; i < minLen; i++ {
		seg := split[0][i]
		same := true
		for _, s := range split[1:] {
			if s[i] != seg {
				same = false
				break
			}
		}
		if !same {
			break
		}
		prefix = append(prefix, seg)
	}
	return strings.Join(prefix, ".")
}
