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

// Package refactor implements the seven anti-pattern detectors of §4.7.
package refactor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// Analyze runs all seven detectors over the graph's internal nodes and
// returns suggestions sorted by severity then module id.
func Analyze(g *types.Graph, cycles [][]string) []types.RefactoringSuggestion {
	internal := g.InternalNodeIDs()

	var out []types.RefactoringSuggestion
	out = append(out, detectGodObjects(g, internal)...)
	out = append(out, detectFeatureEnvy(g, internal)...)
	out = append(out, detectInappropriateIntimacy(g, internal)...)
	out = append(out, detectPotentialDeadCode(g, internal)...)
	out = append(out, detectHubModules(g, internal)...)
	out = append(out, detectCircularDependencies(cycles)...)
	out = append(out, detectUnstableDependencies(g, internal)...)

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := severityRank(out[i].Severity), severityRank(out[j].Severity)
		if si != sj {
			return si < sj
		}
		return out[i].Module < out[j].Module
	})
	return out
}

// Summarize re-derives a RefactoringSummary from a fresh detector run
// rather than memoizing it alongside the suggestions list (§4.7: "summary
// via re-running detector").
func Summarize(g *types.Graph, cycles [][]string) types.RefactoringSummary {
	suggestions := Analyze(g, cycles)
	bySeverity := map[string]int{}
	byPattern := map[string]int{}
	for _, s := range suggestions {
		bySeverity[string(s.Severity)]++
		byPattern[string(s.Pattern)]++
	}
	return types.RefactoringSummary{
		TotalSuggestions: len(suggestions),
		BySeverity:       bySeverity,
		ByPattern:        byPattern,
		ModulesAnalyzed:  len(g.InternalNodeIDs()),
	}
}

func severityRank(s types.HotZoneSeverity) int {
	switch s {
	case types.SeverityCritical:
		return 0
	case types.SeverityWarning:
		return 1
	default:
		return 2
	}
}

func detectGodObjects(g *types.Graph, internal []string) []types.RefactoringSuggestion {
	var out []types.RefactoringSuggestion
	for _, node := range internal {
		successors := g.Successors(node)
		efferent := len(successors)
		if efferent < 15 {
			continue
		}
		afferent := len(g.Predecessors(node))
		severity := types.SeverityWarning
		if efferent >= 25 {
			severity = types.SeverityCritical
		}

		shown := successors
		if len(shown) > 10 {
			shown = shown[:10]
		}
		dedup := dedupSorted(shown)
		affected := dedup
		truncated := ""
		if len(affected) > 5 {
			affected = affected[:5]
			truncated = "..."
		}

		out = append(out, types.RefactoringSuggestion{
			Module:      node,
			Severity:    severity,
			Pattern:     types.PatternGodObject,
			Description: fmt.Sprintf("Module has %d dependencies, violating Single Responsibility Principle.", efferent),
			Metrics: map[string]float64{
				"efferent_coupling": float64(efferent),
				"afferent_coupling": float64(afferent),
				"total_coupling":    float64(efferent + afferent),
			},
			Recommendation: "Consider applying the Facade pattern or splitting into smaller, focused modules.",
			Details: fmt.Sprintf(
				"High efferent coupling (%d dependencies) suggests this module is doing too much. Consider:\n"+
					"1. Apply Facade Pattern - Create a simplified interface to group related dependencies\n"+
					"2. Split Module - Extract distinct responsibilities into separate modules\n"+
					"3. Dependency Injection - Use DI to reduce direct dependencies\n"+
					"Affected modules: %s%s", efferent, strings.Join(affected, ", "), truncated),
			SuggestedRefactoring: "Facade Pattern + Module Split",
		})
	}
	return out
}

func detectFeatureEnvy(g *types.Graph, internal []string) []types.RefactoringSuggestion {
	var out []types.RefactoringSuggestion
	for _, node := range internal {
		successors := g.Successors(node)
		if len(successors) < 3 {
			continue
		}
		total := len(successors)
		counts := make(map[string]int)
		for _, s := range successors {
			counts[s]++
		}
		var keys []string
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, module := range keys {
			count := counts[module]
			ratio := float64(count) / float64(total)
			if ratio >= 0.5 && count >= 5 {
				out = append(out, types.RefactoringSuggestion{
					Module:   node,
					Severity: types.SeverityWarning,
					Pattern:  types.PatternFeatureEnvy,
					Description: fmt.Sprintf("Module heavily depends on '%s' (%d/%d dependencies, %.1f%%).",
						module, count, total, ratio*100),
					Metrics: map[string]float64{
						"dependency_ratio":    ratio,
						"dependency_count":    float64(count),
						"total_dependencies":  float64(total),
					},
					Recommendation: "Consider moving functionality to the target module or creating a new module.",
					Details: fmt.Sprintf(
						"This module uses '%s' extensively. Consider:\n"+
							"1. Move Method - Relocate methods that primarily use '%s' data\n"+
							"2. Extract Class - Create a new class/module that bridges both\n"+
							"3. Introduce Parameter Object - Encapsulate frequently passed data\n"+
							"Dependency ratio: %.1f%% (%d out of %d imports)", module, module, ratio*100, count, total),
					SuggestedRefactoring: "Move Method / Extract Class",
				})
			}
		}
	}
	return out
}

func detectInappropriateIntimacy(g *types.Graph, internal []string) []types.RefactoringSuggestion {
	var out []types.RefactoringSuggestion
	seen := make(map[[2]string]bool)
	for _, node := range internal {
		for _, successor := range g.Successors(node) {
			if !g.HasEdge(successor, node) {
				continue
			}
			pair := edgeKey(node, successor)
			if seen[pair] {
				continue
			}
			seen[pair] = true

			forward := edgeImportCount(g, node, successor)
			backward := edgeImportCount(g, successor, node)

			out = append(out, types.RefactoringSuggestion{
				Module:      node,
				Severity:    types.SeverityCritical,
				Pattern:     types.PatternInappropriateIntimacy,
				Description: fmt.Sprintf("Bidirectional dependency with '%s'.", successor),
				Metrics: map[string]float64{
					"forward_imports":  float64(forward),
					"backward_imports": float64(backward),
				},
				Recommendation: "Break the circular dependency by extracting a common interface or using Dependency Inversion.",
				Details: fmt.Sprintf(
					"Modules '%s' and '%s' depend on each other, creating tight coupling. Consider:\n"+
						"1. Extract Interface - Create a common interface that both can depend on\n"+
						"2. Dependency Inversion - Introduce abstractions to break the cycle\n"+
						"3. Merge Modules - If truly inseparable, consider merging\n"+
						"4. Move Method - Relocate functionality to break the dependency\n"+
						"Forward imports: %d, Backward imports: %d", node, successor, forward, backward),
				SuggestedRefactoring: "Extract Interface + Dependency Inversion",
			})
		}
	}
	return out
}

func detectPotentialDeadCode(g *types.Graph, internal []string) []types.RefactoringSuggestion {
	var out []types.RefactoringSuggestion
	for _, node := range internal {
		in := len(g.Predecessors(node))
		outDeg := len(g.Successors(node))
		if in == 0 && outDeg > 0 {
			out = append(out, types.RefactoringSuggestion{
				Module:      node,
				Severity:    types.SeverityInfo,
				Pattern:     types.PatternPotentialDeadCode,
				Description: fmt.Sprintf("Module has no incoming dependencies but %d outgoing dependencies.", outDeg),
				Metrics: map[string]float64{
					"afferent_coupling": 0,
					"efferent_coupling": float64(outDeg),
				},
				Recommendation: "Verify if this is an entry point or unused code that can be removed.",
				Details: fmt.Sprintf(
					"This module is not imported by any other internal module. Consider:\n"+
						"1. If Entry Point - Mark it clearly as an application entry point\n"+
						"2. If Unused - Remove the module to reduce code clutter\n"+
						"3. If API - Document as public API endpoint\n"+
						"Outgoing dependencies: %d", outDeg),
				SuggestedRefactoring: "Verify Usage / Remove Dead Code",
			})
		}
	}
	return out
}

func detectHubModules(g *types.Graph, internal []string) []types.RefactoringSuggestion {
	var out []types.RefactoringSuggestion
	for _, node := range internal {
		afferent := len(g.Predecessors(node))
		if afferent < 10 {
			continue
		}
		efferent := len(g.Successors(node))
		total := afferent + efferent
		instability := 0.0
		if total > 0 {
			instability = float64(efferent) / float64(total)
		}

		dependents := g.Predecessors(node)
		shown := dependents
		if len(shown) > 10 {
			shown = shown[:10]
		}
		dedup := dedupSorted(shown)
		affected := dedup
		truncated := ""
		if len(affected) > 5 {
			affected = affected[:5]
			truncated = "..."
		}

		severity := types.SeverityInfo
		if afferent >= 15 {
			severity = types.SeverityWarning
		}

		out = append(out, types.RefactoringSuggestion{
			Module:      node,
			Severity:    severity,
			Pattern:     types.PatternHubModule,
			Description: fmt.Sprintf("Module is heavily depended upon by %d other modules.", afferent),
			Metrics: map[string]float64{
				"afferent_coupling":   float64(afferent),
				"efferent_coupling":   float64(efferent),
				"instability":         instability,
				"abstractness_needed": 1 - instability,
			},
			Recommendation: "Ensure module is stable and well-tested. Consider applying Stable Dependencies Principle.",
			Details: fmt.Sprintf(
				"This hub module is critical to the system (%d dependents). Consider:\n"+
					"1. Stability - Ensure comprehensive test coverage (critical path)\n"+
					"2. Interface Segregation - Split into smaller, focused interfaces\n"+
					"3. Stable Abstractions - High stability should pair with high abstractness\n"+
					"4. API Versioning - Implement versioning for breaking changes\n"+
					"Instability: %.2f (lower is more stable)\n"+
					"Dependent modules: %s%s", afferent, instability, strings.Join(affected, ", "), truncated),
			SuggestedRefactoring: "Interface Segregation + Stability Hardening",
		})
	}
	return out
}

func detectCircularDependencies(cycles [][]string) []types.RefactoringSuggestion {
	var out []types.RefactoringSuggestion
	for _, cycle := range cycles {
		if len(cycle) < 2 || len(cycle) > 5 {
			continue
		}
		cycleStr := strings.Join(cycle, " → ") + fmt.Sprintf(" → %s", cycle[0])
		out = append(out, types.RefactoringSuggestion{
			Module:      cycle[0],
			Severity:    types.SeverityCritical,
			Pattern:     types.PatternCircularDependency,
			Description: fmt.Sprintf("Circular dependency detected involving %d modules.", len(cycle)),
			Metrics: map[string]float64{
				"cycle_length": float64(len(cycle)),
			},
			Recommendation: "Break the cycle by extracting a common interface or inverting dependencies.",
			Details: fmt.Sprintf(
				"Circular dependency cycle: %s\n\n"+
					"Refactoring strategies:\n"+
					"1. Extract Interface - Create common abstractions (e.g., create module C with interfaces A and B depend on)\n"+
					"2. Dependency Inversion Principle - Depend on abstractions, not concretions\n"+
					"3. Move Method - Relocate functionality to break the cycle\n"+
					"4. Introduce Mediator - Create a mediator object to coordinate\n"+
					"Example: If A imports B and B imports A, extract shared code into C, then A→C and B→C", cycleStr),
			SuggestedRefactoring: "Extract Interface + Dependency Inversion",
		})
	}
	return out
}

func detectUnstableDependencies(g *types.Graph, internal []string) []types.RefactoringSuggestion {
	instability := make(map[string]float64, len(internal))
	for _, node := range internal {
		afferent := len(g.Predecessors(node))
		efferent := len(g.Successors(node))
		total := afferent + efferent
		if total > 0 {
			instability[node] = float64(efferent) / float64(total)
		}
	}

	var out []types.RefactoringSuggestion
	for _, node := range internal {
		nodeInstability := instability[node]
		if nodeInstability >= 0.5 {
			continue
		}

		type violation struct {
			dep string
			val float64
		}
		var violations []violation
		for _, successor := range g.Successors(node) {
			depInstability, ok := instability[successor]
			if !ok {
				continue
			}
			if depInstability > nodeInstability+0.3 {
				violations = append(violations, violation{successor, depInstability})
			}
		}
		if len(violations) == 0 {
			continue
		}
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].val != violations[j].val {
				return violations[i].val > violations[j].val
			}
			return violations[i].dep < violations[j].dep
		})
		worst := violations[0]

		out = append(out, types.RefactoringSuggestion{
			Module:      node,
			Severity:    types.SeverityWarning,
			Pattern:     types.PatternUnstableDependency,
			Description: fmt.Sprintf("Stable module (I=%.2f) depends on unstable modules.", nodeInstability),
			Metrics: map[string]float64{
				"module_instability":           nodeInstability,
				"worst_dependency_instability": worst.val,
				"violation_count":               float64(len(violations)),
			},
			Recommendation: "Apply Dependency Inversion - depend on abstractions instead of unstable concretions.",
			Details: fmt.Sprintf(
				"This stable module (I=%.2f) depends on unstable modules, violating SDP. Consider:\n"+
					"1. Dependency Inversion - Introduce interfaces/abstractions\n"+
					"2. Stabilize Dependencies - Reduce coupling of dependent modules\n"+
					"3. Move Functionality - Relocate code to reduce dependency\n"+
					"Worst violation: '%s' (I=%.2f)\n"+
					"Total violations: %d", nodeInstability, worst.dep, worst.val, len(violations)),
			SuggestedRefactoring: "Dependency Inversion Principle",
		})
	}
	return out
}

func edgeImportCount(g *types.Graph, from, to string) int {
	for _, e := range g.Edges {
		if e.Source == from && e.Target == to {
			return len(e.Imports)
		}
	}
	return 0
}

func edgeKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func dedupSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
