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

// Package fitness implements the architectural fitness rule engine of
// §4.8: a YAML/JSON rule config is evaluated against an analysis result
// and produces a pass/fail verdict plus a violation list.
package fitness

// RuleType is the closed set of evaluators §4.8 supports.
type RuleType string

const (
	RuleImportRestriction   RuleType = "import_restriction"
	RuleMaxCoupling         RuleType = "max_coupling"
	RuleNoCircular          RuleType = "no_circular"
	RuleMaxThirdPartyPct    RuleType = "max_third_party_percent"
	RuleMaxDepth            RuleType = "max_depth"
	RuleMaxComplexity       RuleType = "max_complexity"
)

// Severity is a rule's configured severity (distinct from HotZoneSeverity:
// fitness violations only ever carry error/warning/info).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Parameters bundles every rule type's optional parameters; only the
// fields relevant to a rule's RuleType are read (§4.8, §9's "typed
// per-rule-type parameter structs parsed at load time").
type Parameters struct {
	// import_restriction
	ForbiddenSourcePattern string `yaml:"forbidden_source_pattern,omitempty" json:"forbidden_source_pattern,omitempty"`
	ForbiddenTargetPattern string `yaml:"forbidden_target_pattern,omitempty" json:"forbidden_target_pattern,omitempty"`
	MessageTemplate        string `yaml:"message_template,omitempty" json:"message_template,omitempty"`

	// max_coupling
	MaxEfferent   *int   `yaml:"max_efferent,omitempty" json:"max_efferent,omitempty"`
	MaxAfferent   *int   `yaml:"max_afferent,omitempty" json:"max_afferent,omitempty"`
	MaxTotal      *int   `yaml:"max_total,omitempty" json:"max_total,omitempty"`
	ModulePattern string `yaml:"module_pattern,omitempty" json:"module_pattern,omitempty"`

	// max_third_party_percent
	MaxPercent *float64 `yaml:"max_percent,omitempty" json:"max_percent,omitempty"`

	// max_depth
	MaxDepth *int `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`

	// max_complexity
	MaxCyclomatic     *float64 `yaml:"max_cyclomatic,omitempty" json:"max_cyclomatic,omitempty"`
	MinMaintainability *float64 `yaml:"min_maintainability,omitempty" json:"min_maintainability,omitempty"`
}

// Rule is one configured fitness rule. Enabled is a pointer so an
// omitted `enabled` key defaults to true (matching the rule schema's
// default) while an explicit `enabled: false` still disables it.
type Rule struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	RuleType    RuleType   `yaml:"rule_type" json:"rule_type"`
	Severity    Severity   `yaml:"severity" json:"severity"`
	Enabled     *bool      `yaml:"enabled" json:"enabled"`
	Parameters  Parameters `yaml:"parameters" json:"parameters"`
}

// IsEnabled reports whether the rule should be evaluated.
func (r Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Config is the top-level `{version, rules}` document read from a rule
// file (§6).
type Config struct {
	Version int    `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// Violation is one rule evaluation failure.
type Violation struct {
	RuleID          string             `json:"rule_id"`
	RuleName        string             `json:"rule_name"`
	Severity        Severity           `json:"severity"`
	Message         string             `json:"message"`
	Details         map[string]any     `json:"details"`
	AffectedModules []string           `json:"affected_modules"`
}

// Result is the outcome of validating a rule set (§4.8).
type Result struct {
	Passed     bool        `json:"passed"`
	TotalRules int         `json:"total_rules"`
	Violations []Violation `json:"violations"`
	Errors     int         `json:"errors"`
	Warnings   int         `json:"warnings"`
	Infos      int         `json:"infos"`
	Summary    string      `json:"summary"`
}
