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
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
	"github.com/kraklabs/charon/pkg/telemetry"
)

// Analysis bundles the inputs every evaluator needs: the dependency
// graph, the already-computed global metrics, and per-node metrics
// (§4.8 reads coupling/complexity figures the Metrics Engine produced,
// it never recomputes them).
type Analysis struct {
	Graph    *types.Graph
	Global   types.GlobalMetrics
	NodeInfo map[string]*types.NodeMetrics
}

// Evaluate runs every enabled rule in cfg against an, returning the
// combined Result (§4.8's validate_rules).
func Evaluate(cfg Config, an Analysis, failOnError, failOnWarning bool) Result {
	var violations []Violation
	var errs, warns, infos int
	total := 0

	for _, rule := range cfg.Rules {
		if !rule.IsEnabled() {
			continue
		}
		total++
		telemetry.RecordFitnessRuleEvaluated(string(rule.RuleType))

		vs := evaluateRule(rule, an)
		for _, v := range vs {
			violations = append(violations, v)
			telemetry.RecordFitnessViolation(string(v.Severity))
			switch v.Severity {
			case SeverityError:
				errs++
			case SeverityWarning:
				warns++
			default:
				infos++
			}
		}
	}

	passed := true
	if failOnError && errs > 0 {
		passed = false
	}
	if failOnWarning && warns > 0 {
		passed = false
	}

	return Result{
		Passed:     passed,
		TotalRules: total,
		Violations: violations,
		Errors:     errs,
		Warnings:   warns,
		Infos:      infos,
		Summary:    summarize(total, errs, warns, infos, passed),
	}
}

func summarize(total, errs, warns, infos int, passed bool) string {
	verdict := "PASSED"
	if !passed {
		verdict = "FAILED"
	}
	return fmt.Sprintf("%s: %d rule(s) evaluated, %d error(s), %d warning(s), %d info(s)",
		verdict, total, errs, warns, infos)
}

func evaluateRule(rule Rule, an Analysis) []Violation {
	switch rule.RuleType {
	case RuleImportRestriction:
		return evalImportRestriction(rule, an)
	case RuleMaxCoupling:
		return evalMaxCoupling(rule, an)
	case RuleNoCircular:
		return evalNoCircular(rule, an)
	case RuleMaxThirdPartyPct:
		return evalMaxThirdPartyPercent(rule, an)
	case RuleMaxDepth:
		return evalMaxDepth(rule, an)
	case RuleMaxComplexity:
		return evalMaxComplexity(rule, an)
	default:
		return []Violation{{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown rule type %q", rule.RuleType),
			Details:  map[string]any{"rule_type": string(rule.RuleType)},
		}}
	}
}

// evalImportRestriction forbids edges whose source and target both match
// configured regex patterns (§4.8.1).
func evalImportRestriction(rule Rule, an Analysis) []Violation {
	srcRe, err := compileOrNil(rule.Parameters.ForbiddenSourcePattern)
	if err != nil {
		return []Violation{ruleConfigError(rule, err)}
	}
	tgtRe, err := compileOrNil(rule.Parameters.ForbiddenTargetPattern)
	if err != nil {
		return []Violation{ruleConfigError(rule, err)}
	}

	var affected []string
	var edges []string
	for _, e := range an.Graph.Edges {
		if srcRe != nil && !srcRe.MatchString(e.Source) {
			continue
		}
		if tgtRe != nil && !tgtRe.MatchString(e.Target) {
			continue
		}
		edges = append(edges, fmt.Sprintf("%s -> %s", e.Source, e.Target))
		affected = append(affected, e.Source, e.Target)
	}
	if len(edges) == 0 {
		return nil
	}
	sort.Strings(edges)
	affected = dedupSortedFitness(affected)

	msg := rule.Parameters.MessageTemplate
	if msg == "" {
		msg = fmt.Sprintf("Forbidden import detected: %d matching edge(s)", len(edges))
	}

	return []Violation{{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		Severity:        rule.Severity,
		Message:         msg,
		Details:         map[string]any{"forbidden_edges": edges},
		AffectedModules: affected,
	}}
}

// evalMaxCoupling flags modules whose afferent/efferent/total coupling
// exceeds configured limits (§4.8.2).
func evalMaxCoupling(rule Rule, an Analysis) []Violation {
	moduleRe, err := compileOrNil(rule.Parameters.ModulePattern)
	if err != nil {
		return []Violation{ruleConfigError(rule, err)}
	}

	var violations []Violation
	ids := an.Graph.InternalNodeIDs()
	for _, id := range ids {
		if moduleRe != nil && !moduleRe.MatchString(id) {
			continue
		}
		nm := an.NodeInfo[id]
		if nm == nil {
			continue
		}

		var reasons []string
		if p := rule.Parameters.MaxEfferent; p != nil && nm.Efferent > *p {
			reasons = append(reasons, fmt.Sprintf("efferent coupling %d exceeds max %d", nm.Efferent, *p))
		}
		if p := rule.Parameters.MaxAfferent; p != nil && nm.Afferent > *p {
			reasons = append(reasons, fmt.Sprintf("afferent coupling %d exceeds max %d", nm.Afferent, *p))
		}
		if p := rule.Parameters.MaxTotal; p != nil {
			total := nm.Afferent + nm.Efferent
			if total > *p {
				reasons = append(reasons, fmt.Sprintf("total coupling %d exceeds max %d", total, *p))
			}
		}
		if len(reasons) == 0 {
			continue
		}

		violations = append(violations, Violation{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: rule.Severity,
			Message:  fmt.Sprintf("%s: %s", id, strings.Join(reasons, "; ")),
			Details: map[string]any{
				"module":    id,
				"afferent":  nm.Afferent,
				"efferent":  nm.Efferent,
			},
			AffectedModules: []string{id},
		})
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].AffectedModules[0] < violations[j].AffectedModules[0] })
	return violations
}

// evalNoCircular forbids any circular dependency (§4.8.3); one
// violation per cycle already computed by the Metrics Engine.
func evalNoCircular(rule Rule, an Analysis) []Violation {
	var violations []Violation
	for _, cycle := range an.Global.CircularDependencies {
		path := strings.Join(cycle, " -> ")
		if len(cycle) > 0 {
			path = path + " -> " + cycle[0]
		}
		violations = append(violations, Violation{
			RuleID:          rule.ID,
			RuleName:        rule.Name,
			Severity:        rule.Severity,
			Message:         fmt.Sprintf("Circular dependency: %s", path),
			Details:         map[string]any{"cycle": cycle},
			AffectedModules: append([]string(nil), cycle...),
		})
	}
	return violations
}

// evalMaxThirdPartyPercent flags the project if the number of third-party
// package nodes, as a percent of the internal module count, exceeds a
// configured percent (§4.8.4).
func evalMaxThirdPartyPercent(rule Rule, an Analysis) []Violation {
	if rule.Parameters.MaxPercent == nil {
		return nil
	}
	totalFiles := an.Global.TotalInternal
	if totalFiles == 0 {
		return nil
	}

	thirdParty := 0
	for _, n := range an.Graph.Nodes {
		if n.Type == types.TypeThirdParty {
			thirdParty++
		}
	}

	pct := float64(thirdParty) / float64(totalFiles) * 100
	if pct <= *rule.Parameters.MaxPercent {
		return nil
	}

	return []Violation{{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Severity: rule.Severity,
		Message: fmt.Sprintf("Third-party dependency percentage %.1f%% exceeds max %.1f%%",
			pct, *rule.Parameters.MaxPercent),
		Details: map[string]any{
			"percent":     pct,
			"max_percent": *rule.Parameters.MaxPercent,
		},
	}}
}

// evalMaxDepth runs a hop-count BFS from every internal node and flags
// any reachable internal module beyond the configured depth, reporting
// the deepest such target and its hop count (§4.8.5; resolved as hop
// count, matching single_source_shortest_path_length semantics).
func evalMaxDepth(rule Rule, an Analysis) []Violation {
	if rule.Parameters.MaxDepth == nil {
		return nil
	}
	maxDepth := *rule.Parameters.MaxDepth

	var violations []Violation
	for _, start := range an.Graph.InternalNodeIDs() {
		depths := bfsDepths(an.Graph, start)
		var tooDeep []string
		deepest, deepestHops := "", 0
		for id, d := range depths {
			if n, ok := an.Graph.Nodes[id]; !ok || n.Type != types.TypeInternal {
				continue
			}
			if d > maxDepth {
				tooDeep = append(tooDeep, id)
				if d > deepestHops || (d == deepestHops && id < deepest) {
					deepest, deepestHops = id, d
				}
			}
		}
		if len(tooDeep) == 0 {
			continue
		}
		sort.Strings(tooDeep)
		violations = append(violations, Violation{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: rule.Severity,
			Message: fmt.Sprintf("%s: %d module(s) exceed max depth %d (deepest: %s at %d hops)",
				start, len(tooDeep), maxDepth, deepest, deepestHops),
			Details: map[string]any{
				"module":          start,
				"max_depth":       maxDepth,
				"exceeding_count": len(tooDeep),
				"deepest_target":  deepest,
				"hops":            deepestHops,
			},
			AffectedModules: append([]string{start}, tooDeep...),
		})
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].AffectedModules[0] < violations[j].AffectedModules[0] })
	return violations
}

func bfsDepths(g *types.Graph, start string) map[string]int {
	depths := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range g.Successors(cur) {
			if _, visited := depths[succ]; visited {
				continue
			}
			depths[succ] = depths[cur] + 1
			queue = append(queue, succ)
		}
	}
	delete(depths, start)
	return depths
}

// evalMaxComplexity flags modules whose cyclomatic complexity or
// maintainability index breach configured bounds (§4.8.6).
func evalMaxComplexity(rule Rule, an Analysis) []Violation {
	moduleRe, err := compileOrNil(rule.Parameters.ModulePattern)
	if err != nil {
		return []Violation{ruleConfigError(rule, err)}
	}

	var violations []Violation
	for _, id := range an.Graph.InternalNodeIDs() {
		if moduleRe != nil && !moduleRe.MatchString(id) {
			continue
		}
		nm := an.NodeInfo[id]
		if nm == nil {
			continue
		}

		var reasons []string
		if p := rule.Parameters.MaxCyclomatic; p != nil && nm.CyclomaticComplexity > *p {
			reasons = append(reasons, fmt.Sprintf("cyclomatic complexity %.1f exceeds max %.1f", nm.CyclomaticComplexity, *p))
		}
		if p := rule.Parameters.MinMaintainability; p != nil && nm.MaintainabilityIndex > 0 && nm.MaintainabilityIndex < *p {
			reasons = append(reasons, fmt.Sprintf("maintainability index %.1f below min %.1f", nm.MaintainabilityIndex, *p))
		}
		if len(reasons) == 0 {
			continue
		}

		violations = append(violations, Violation{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: rule.Severity,
			Message:  fmt.Sprintf("%s: %s", id, strings.Join(reasons, "; ")),
			Details: map[string]any{
				"module":                 id,
				"cyclomatic_complexity":  nm.CyclomaticComplexity,
				"maintainability_index":  nm.MaintainabilityIndex,
				"complexity_grade":       nm.ComplexityGrade,
				"maintainability_grade":  nm.MaintainabilityGrade,
			},
			AffectedModules: []string{id},
		})
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].AffectedModules[0] < violations[j].AffectedModules[0] })
	return violations
}

func compileOrNil(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

func ruleConfigError(rule Rule, err error) Violation {
	return Violation{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Severity: SeverityError,
		Message:  fmt.Sprintf("invalid rule configuration: %v", err),
	}
}

func dedupSortedFitness(vals []string) []string {
	sort.Strings(vals)
	out := vals[:0]
	var last string
	first := true
	for _, v := range vals {
		if first || v != last {
			out = append(out, v)
			last = v
			first = false
		}
	}
	return out
}
