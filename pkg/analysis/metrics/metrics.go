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

// Package metrics computes per-node coupling/instability/cycle/hot-zone
// metrics and the graph-wide aggregates of §4.5.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/kraklabs/charon/pkg/analysis/types"
	"github.com/kraklabs/charon/pkg/telemetry"
)

// CouplingPercentile is the default high-coupling threshold percentile
// (§4.5: "top 20% by fan-out").
const CouplingPercentile = 80.0

// ComplexityInput is the Python-only per-module complexity summary
// (§4.9) the caller threads in before calling Compute; modules with no
// entry get zero-valued complexity fields and grade A.
type ComplexityInput struct {
	AvgComplexity      float64
	MaxComplexity      int
	MaintainabilityIdx float64
	LinesOfCode        int
	ComplexityGrade    string
	MaintainabilityGrade string
}

// Compute derives NodeMetrics for every internal node in g and the subset of
// GlobalMetrics §4.5 owns (coupling/instability/cycles/hot-zones).
// Clustering and refactoring fields are populated by later stages.
func Compute(g *types.Graph, complexityByModule map[string]ComplexityInput) (map[string]*types.NodeMetrics, types.GlobalMetrics) {
	internal := g.InternalNodeIDs()

	afferent := make(map[string]int, len(internal))
	efferent := make(map[string]int, len(internal))
	for _, id := range internal {
		efferent[id] = len(g.Successors(id))
		afferent[id] = len(g.Predecessors(id))
	}

	couplingThreshold := percentile(efferentValues(internal, efferent), CouplingPercentile)

	cycleResult := FindCycles(g)
	telemetry.RecordCyclesDetected(len(cycleResult.Cycles))
	inCycle := InCycle(onlyInternalCycles(cycleResult.Cycles, g))

	nodeMetrics := make(map[string]*types.NodeMetrics, len(internal))
	var totalAfferent, totalEfferent, totalComplexity, totalMaintainability int
	var sumAfferent, sumEfferent, sumComplexity, sumMaintainability float64
	var highCoupling []string
	var hotZones []types.Node

	for _, id := range internal {
		ca, ce := afferent[id], efferent[id]
		instability := 0.0
		if ca+ce > 0 {
			instability = round3(float64(ce) / float64(ca+ce))
		}
		isHighCoupling := float64(ce) >= couplingThreshold

		ci, ok := complexityByModule[id]
		if !ok {
			ci.ComplexityGrade, ci.MaintainabilityGrade = "A", "A"
		}
		hz := hotZone(ci.AvgComplexity, ca+ce)

		nm := &types.NodeMetrics{
			Afferent:              ca,
			Efferent:              ce,
			Instability:           instability,
			IsCircular:            inCycle[id],
			IsHighCoupling:        isHighCoupling,
			CyclomaticComplexity:  ci.AvgComplexity,
			MaxComplexity:         float64(ci.MaxComplexity),
			MaintainabilityIndex:  ci.MaintainabilityIdx,
			LinesOfCode:           ci.LinesOfCode,
			ComplexityGrade:       ci.ComplexityGrade,
			MaintainabilityGrade:  ci.MaintainabilityGrade,
			HotZone:               hz,
		}
		nodeMetrics[id] = nm

		totalAfferent++
		sumAfferent += float64(ca)
		sumEfferent += float64(ce)
		totalEfferent++
		if ci.AvgComplexity > 0 {
			sumComplexity += ci.AvgComplexity
			totalComplexity++
		}
		if ci.MaintainabilityIdx > 0 {
			sumMaintainability += ci.MaintainabilityIdx
			totalMaintainability++
		}
		if isHighCoupling {
			highCoupling = append(highCoupling, id)
		}
		if hz.IsHotZone {
			if node, ok := g.Nodes[id]; ok {
				hotZones = append(hotZones, *node)
			}
		}
	}

	sort.Strings(highCoupling)
	sort.Slice(hotZones, func(i, j int) bool {
		si, sj := nodeMetrics[hotZones[i].ID].HotZone.Score, nodeMetrics[hotZones[j].ID].HotZone.Score
		if si != sj {
			return si > sj
		}
		return hotZones[i].ID < hotZones[j].ID
	})
	hotZoneIDs := make([]string, len(hotZones))
	for i, n := range hotZones {
		hotZoneIDs[i] = n.ID
	}

	circularDeps := sortedCycles(onlyInternalCycles(cycleResult.Cycles, g))

	gm := types.GlobalMetrics{
		TotalNodes:          len(g.Nodes),
		TotalInternal:       len(internal),
		TotalThirdParty:     len(g.Nodes) - len(internal),
		AvgAfferent:         safeAvg(sumAfferent, totalAfferent),
		AvgEfferent:         safeAvg(sumEfferent, totalEfferent),
		AvgComplexity:       safeAvg(sumComplexity, totalComplexity),
		AvgMaintainability:  safeAvg(sumMaintainability, totalMaintainability),
		CircularDependencies: circularDeps,
		HighCouplingFiles:   highCoupling,
		CouplingThreshold:   couplingThreshold,
		HotZoneFiles:        hotZoneIDs,
	}

	return nodeMetrics, gm
}

func efferentValues(ids []string, efferent map[string]int) []float64 {
	vals := make([]float64, len(ids))
	for i, id := range ids {
		vals[i] = float64(efferent[id])
	}
	return vals
}

// percentile computes the Pth percentile via linear interpolation between
// sorted ascending values (§4.5: "sort ascending, k=(n-1)*P/100,
// interpolate between floor and ceil indices").
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	k := (float64(len(sorted)-1)) * p / 100.0
	lo := int(math.Floor(k))
	hi := int(math.Ceil(k))
	if lo == hi {
		return sorted[lo]
	}
	frac := k - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func safeAvg(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round3(sum / float64(n))
}

// hotZone computes §4.5.2's score/severity for a single node.
func hotZone(complexity float64, totalCoupling int) types.HotZone {
	score := (math.Min(complexity/20, 1)*0.6 + math.Min(float64(totalCoupling)/10, 1)*0.4) * 100
	isHot := complexity >= 10.0 && totalCoupling >= 5

	switch {
	case isHot && score >= 75:
		return types.HotZone{IsHotZone: true, Severity: types.SeverityCritical, Score: score,
			Reason: fmt.Sprintf("Critical: High complexity (%.1f) + High coupling (%d)", complexity, totalCoupling)}
	case isHot:
		return types.HotZone{IsHotZone: true, Severity: types.SeverityWarning, Score: score,
			Reason: fmt.Sprintf("Warning: Elevated complexity (%.1f) + coupling (%d)", complexity, totalCoupling)}
	case complexity >= 10.0:
		return types.HotZone{IsHotZone: false, Severity: types.SeverityInfo, Score: score,
			Reason: fmt.Sprintf("Complex code (%.1f) but manageable coupling", complexity)}
	case totalCoupling >= 5:
		return types.HotZone{IsHotZone: false, Severity: types.SeverityInfo, Score: score,
			Reason: fmt.Sprintf("High coupling (%d) but low complexity", totalCoupling)}
	default:
		return types.HotZone{IsHotZone: false, Severity: types.SeverityOK, Score: score,
			Reason: "Healthy complexity and coupling levels"}
	}
}

// onlyInternalCycles filters to cycles whose nodes are all Internal
// (§4.5.1: "only cycles whose nodes are all Internal are reported to
// downstream rule evaluators that care").
func onlyInternalCycles(cycles [][]string, g *types.Graph) [][]string {
	var out [][]string
	for _, c := range cycles {
		allInternal := true
		for _, id := range c {
			if n, ok := g.Nodes[id]; !ok || n.Type != types.TypeInternal {
				allInternal = false
				break
			}
		}
		if allInternal {
			out = append(out, c)
		}
	}
	return out
}

func sortedCycles(cycles [][]string) [][]string {
	out := append([][]string(nil), cycles...)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}
