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

// Package types defines the data model shared by every stage of the
// analysis pipeline: parsed input, the dependency graph, and the
// metrics attached to it.
package types

import (
	"encoding/json"
	"sort"
	"strings"
)

// Language is the closed set of source languages the analyzer understands.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangRust       Language = "rust"
	LangUnknown    Language = ""
)

// extensionLanguage is the fixed extension -> language table referenced by §3.
var extensionLanguage = map[string]Language{
	".py":   LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".go":   LangGo,
	".java": LangJava,
	".rs":   LangRust,
}

// LanguageForExtension returns the language registered for a file extension
// (including the leading dot), or LangUnknown if none matches.
func LanguageForExtension(ext string) Language {
	if lang, ok := extensionLanguage[strings.ToLower(ext)]; ok {
		return lang
	}
	return LangUnknown
}

// NodeKind classifies what a module-graph node represents.
type NodeKind string

const (
	KindModule    NodeKind = "Module"
	KindClass     NodeKind = "Class"
	KindInterface NodeKind = "Interface"
	KindFunction  NodeKind = "Function"
	KindComponent NodeKind = "Component"
	KindHook      NodeKind = "Hook"
	KindService   NodeKind = "Service"
	KindLibrary   NodeKind = "Library"
)

// NodeType distinguishes project-owned modules from third-party sinks.
type NodeType string

const (
	TypeInternal   NodeType = "Internal"
	TypeThirdParty NodeType = "ThirdParty"
)

// ThirdPartyPrefix is prepended to the package name to form a third-party
// node id, e.g. third_party.requests.
const ThirdPartyPrefix = "third_party."

// ThirdPartyNodeID builds the synthetic node id for an external package.
func ThirdPartyNodeID(pkg string) string {
	return ThirdPartyPrefix + pkg
}

// File is a single source file handed to the driver.
type File struct {
	Path    string
	Content []byte
}

// ParsedImport is one import/use/require statement extracted by a
// language parser, prior to resolution.
type ParsedImport struct {
	// Text is the module/path string as written, without a Python relative
	// import's leading dots (e.g. "app.utils", "@/utils/helper",
	// "github.com/foo/bar").
	Text string
	// Names are the imported symbol names, when the statement lists any
	// (e.g. "from .utils import helper" -> ["helper"]). Empty for bare
	// "import x" statements.
	Names []string
	// IsRelative marks a relative import (Python ".", JS/TS leading dot,
	// Rust bodyless `mod name;`; Rust crate::/super::/self:: paths are not
	// marked and are recognized by the resolver from Text).
	IsRelative bool
	// Level is the number of leading dots in a Python relative import;
	// meaningless for other languages.
	Level int
}

// ResolutionKind is the closed sum type a resolver returns.
type ResolutionKind string

const (
	ResolutionInternal ResolutionKind = "internal"
	ResolutionExternal ResolutionKind = "external"
	ResolutionStdlib   ResolutionKind = "stdlib"
)

// Resolution is the outcome of resolving one ParsedImport: exactly one of
// an internal module id, an external package root, or a stdlib name.
type Resolution struct {
	Kind      ResolutionKind
	ModuleID  string // set when Kind == ResolutionInternal
	Package   string // set when Kind == ResolutionExternal
	Version   string // optional, External only
	StdlibPkg string // set when Kind == ResolutionStdlib
}

func Internal(moduleID string) Resolution {
	return Resolution{Kind: ResolutionInternal, ModuleID: moduleID}
}

func External(pkg string) Resolution {
	return Resolution{Kind: ResolutionExternal, Package: pkg}
}

func ExternalWithVersion(pkg, version string) Resolution {
	return Resolution{Kind: ResolutionExternal, Package: pkg, Version: version}
}

func Stdlib(name string) Resolution {
	return Resolution{Kind: ResolutionStdlib, StdlibPkg: name}
}

// ModuleMetadata describes an internal module node.
type ModuleMetadata struct {
	Language Language `json:"language"`
	FilePath string   `json:"file_path"`
	Service  string   `json:"service"`
	Kind     NodeKind `json:"kind"`
}

// DependencyEdge connects two module ids with the accumulated, deduplicated
// list of imported names.
type DependencyEdge struct {
	Source  string
	Target  string
	Imports []string // deduplicated, insertion order preserved
}

// Weight is the number of distinct imported names on the edge; an edge with
// no named imports (e.g. Rust `mod x;`) still has weight 1 (§4.4).
func (e DependencyEdge) Weight() int {
	if len(e.Imports) == 0 {
		return 1
	}
	return len(e.Imports)
}

// HotZoneSeverity is the closed severity set for §4.5.2.
type HotZoneSeverity string

const (
	SeverityCritical HotZoneSeverity = "critical"
	SeverityWarning  HotZoneSeverity = "warning"
	SeverityInfo     HotZoneSeverity = "info"
	SeverityOK       HotZoneSeverity = "ok"
)

// HotZone is the per-node hot-zone verdict of §4.5.2.
type HotZone struct {
	IsHotZone bool            `json:"is_hot_zone"`
	Severity  HotZoneSeverity `json:"severity"`
	Score     float64         `json:"score"`
	Reason    string          `json:"reason"`
}

// NodeMetrics holds every metric §4.5/§4.9 attaches to a node.
type NodeMetrics struct {
	Afferent             int     `json:"afferent"` // Ca, in-degree
	Efferent             int     `json:"efferent"` // Ce, out-degree
	Instability          float64 `json:"instability"`
	IsCircular           bool    `json:"is_circular"`
	IsHighCoupling       bool    `json:"is_high_coupling"`
	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	MaxComplexity        float64 `json:"max_complexity"`
	MaintainabilityIndex float64 `json:"maintainability_index"`
	LinesOfCode          int     `json:"lines_of_code"`
	ComplexityGrade      string  `json:"complexity_grade"`
	MaintainabilityGrade string  `json:"maintainability_grade"`
	HotZone              HotZone `json:"hot_zone"`
}

// Node is a materialized graph node: either an internal module (with
// metadata) or a third-party sink.
type Node struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Metadata *ModuleMetadata `json:"metadata,omitempty"` // nil for ThirdParty nodes
	Metrics  NodeMetrics     `json:"metrics"`
}

// Edge is a materialized graph edge with accumulated import names.
type Edge struct {
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Imports []string `json:"imports"`
	Weight  int      `json:"weight"`
}

// Cluster is one Louvain community over the undirected projection of
// internal nodes (§4.6).
type Cluster struct {
	ID                     int      `json:"id"`
	Members                []string `json:"members"`
	Size                   int      `json:"size"`
	InternalEdges          int      `json:"internal_edges"`
	ExternalEdges          int      `json:"external_edges"`
	Cohesion               float64  `json:"cohesion"`
	ModularityContribution float64  `json:"modularity_contribution"`
	AvgInternalCoupling    float64  `json:"avg_internal_coupling"`
	IsPackageCandidate     bool     `json:"is_package_candidate"`
}

// PackageSuggestion names a suggested package boundary for a cluster that
// qualifies as a package candidate (§4.6).
type PackageSuggestion struct {
	ClusterID            int      `json:"cluster_id"`
	SuggestedPackageName string   `json:"suggested_package_name"`
	Modules              []string `json:"modules"`
	Reason               string   `json:"reason"`
}

// RefactoringPattern is the closed set of detector patterns (§4.7).
type RefactoringPattern string

const (
	PatternGodObject             RefactoringPattern = "god_object"
	PatternFeatureEnvy           RefactoringPattern = "feature_envy"
	PatternInappropriateIntimacy RefactoringPattern = "inappropriate_intimacy"
	PatternPotentialDeadCode     RefactoringPattern = "potential_dead_code"
	PatternHubModule             RefactoringPattern = "hub_module"
	PatternCircularDependency    RefactoringPattern = "circular_dependency"
	PatternUnstableDependency    RefactoringPattern = "unstable_dependency"
)

// RefactoringSuggestion is one detector finding (§4.7).
type RefactoringSuggestion struct {
	Module               string              `json:"module"`
	Severity             HotZoneSeverity     `json:"severity"` // critical | warning | info
	Pattern              RefactoringPattern  `json:"pattern"`
	Description          string              `json:"description"`
	Metrics              map[string]float64  `json:"metrics"`
	Recommendation       string              `json:"recommendation"`
	Details              string              `json:"details"`
	SuggestedRefactoring string              `json:"suggested_refactoring"`
}

// RefactoringSummary is GlobalMetrics.refactoring_summary (§4.7, §12).
type RefactoringSummary struct {
	TotalSuggestions int            `json:"total_suggestions"`
	BySeverity       map[string]int `json:"by_severity"`
	ByPattern        map[string]int `json:"by_pattern"`
	ModulesAnalyzed  int            `json:"modules_analyzed"`
}

// GlobalMetrics aggregates per-analysis statistics (§3).
type GlobalMetrics struct {
	TotalNodes             int                     `json:"total_nodes"`
	TotalInternal          int                     `json:"total_internal"`
	TotalThirdParty        int                     `json:"total_third_party"`
	AvgAfferent            float64                 `json:"avg_afferent"`
	AvgEfferent            float64                 `json:"avg_efferent"`
	AvgComplexity          float64                 `json:"avg_complexity"`
	AvgMaintainability     float64                 `json:"avg_maintainability"`
	CircularDependencies   [][]string              `json:"circular_dependencies"` // each entry is a simple cycle, node ids in order
	HighCouplingFiles      []string                `json:"high_coupling_files"`
	CouplingThreshold      float64                 `json:"coupling_threshold"`
	HotZoneFiles           []string                `json:"hot_zone_files"` // sorted by score desc
	Clusters               []Cluster               `json:"clusters"`
	PackageSuggestions     []PackageSuggestion      `json:"package_suggestions"`
	RefactoringSuggestions []RefactoringSuggestion  `json:"refactoring_suggestions"`
	RefactoringSummary     RefactoringSummary       `json:"refactoring_summary"`
}

// Graph is the directed, labelled-node, labelled-edge dependency graph
// produced by the Graph Builder (§4.4) and enriched in place by the
// Metrics Engine, Clustering, and Refactoring Detector.
type Graph struct {
	Nodes         map[string]*Node
	Edges         []*Edge
	outAdjacency  map[string][]string
	inAdjacency   map[string][]string
	edgeByPair    map[[2]string]*Edge
}

// NewGraph returns an empty graph ready for node/edge insertion.
func NewGraph() *Graph {
	return &Graph{
		Nodes:        make(map[string]*Node),
		outAdjacency: make(map[string][]string),
		inAdjacency:  make(map[string][]string),
		edgeByPair:   make(map[[2]string]*Edge),
	}
}

// AddNode inserts a node if its id is not already present.
func (g *Graph) AddNode(n *Node) {
	if _, exists := g.Nodes[n.ID]; exists {
		return
	}
	g.Nodes[n.ID] = n
}

// AddEdge inserts or updates the edge (from, to) with the given imported
// names, deduplicating and preserving insertion order, and suppresses
// self-loops per §3's graph invariant.
func (g *Graph) AddEdge(from, to string, names []string) {
	if from == to {
		return
	}
	key := [2]string{from, to}
	e, exists := g.edgeByPair[key]
	if !exists {
		e = &Edge{Source: from, Target: to}
		g.edgeByPair[key] = e
		g.Edges = append(g.Edges, e)
		g.outAdjacency[from] = append(g.outAdjacency[from], to)
		g.inAdjacency[to] = append(g.inAdjacency[to], from)
	}
	seen := make(map[string]bool, len(e.Imports))
	for _, n := range e.Imports {
		seen[n] = true
	}
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			e.Imports = append(e.Imports, n)
		}
	}
	if len(e.Imports) == 0 {
		e.Weight = 1
	} else {
		e.Weight = len(e.Imports)
	}
}

// Successors returns the out-neighbors of a node id, in insertion order.
func (g *Graph) Successors(id string) []string {
	return g.outAdjacency[id]
}

// Predecessors returns the in-neighbors of a node id, in insertion order.
func (g *Graph) Predecessors(id string) []string {
	return g.inAdjacency[id]
}

// HasEdge reports whether an edge (from, to) exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgeByPair[[2]string{from, to}]
	return ok
}

// InternalNodeIDs returns the ids of every Internal node, sorted.
func (g *Graph) InternalNodeIDs() []string {
	var ids []string
	for id, n := range g.Nodes {
		if n.Type == TypeInternal {
			ids = append(ids, id)
		}
	}
	sortStrings(ids)
	return ids
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// DependencyAnalysis is the raw, pre-graph output of the Analysis Driver
// (§4.3): per-module content, imports, dependency targets, accumulated
// import names per edge, and module metadata, plus file/warning totals.
type DependencyAnalysis struct {
	ProjectName    string
	Modules        map[string]string // internal module id -> file content
	Imports        map[string][]ParsedImport
	Dependencies   map[string]map[string]bool // source -> set of targets
	ImportDetails  map[[2]string][]string     // (source,target) -> imported names
	ModuleMetadata map[string]ModuleMetadata
	TotalFiles     int
	ThirdPartyByModule map[string]map[string]bool // internal module -> set of third-party packages it depends on
	Warnings       []string
}

// NewDependencyAnalysis returns a DependencyAnalysis with all maps ready
// for use.
func NewDependencyAnalysis(projectName string) *DependencyAnalysis {
	return &DependencyAnalysis{
		ProjectName:        projectName,
		Modules:            make(map[string]string),
		Imports:            make(map[string][]ParsedImport),
		Dependencies:       make(map[string]map[string]bool),
		ImportDetails:      make(map[[2]string][]string),
		ModuleMetadata:     make(map[string]ModuleMetadata),
		ThirdPartyByModule: make(map[string]map[string]bool),
	}
}

// AnalysisResult is the public analysis output artifact of §6.
type AnalysisResult struct {
	Graph         *Graph        `json:"graph"`
	GlobalMetrics GlobalMetrics `json:"global_metrics"`
	Warnings      []string      `json:"warnings"`
}

// graphJSON is the wire shape of a Graph: two sorted arrays, matching §6's
// contract that node/edge field names are part of the serialization
// contract and that re-running analysis yields identical output once
// set-valued fields are sorted (§8's round-trip property).
type graphJSON struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// MarshalJSON emits nodes and edges as sorted arrays so two analyses of
// identical input serialize byte-for-byte identically.
func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]*Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	return json.Marshal(graphJSON{Nodes: nodes, Edges: edges})
}

// UnmarshalJSON rebuilds a Graph's adjacency indexes from its serialized
// node/edge arrays (the counterpart of MarshalJSON, used by the fitness
// CLI's `--graph` artifact loader in §6).
func (g *Graph) UnmarshalJSON(data []byte) error {
	var gj graphJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return err
	}

	g.Nodes = make(map[string]*Node, len(gj.Nodes))
	g.outAdjacency = make(map[string][]string)
	g.inAdjacency = make(map[string][]string)
	g.edgeByPair = make(map[[2]string]*Edge, len(gj.Edges))

	for _, n := range gj.Nodes {
		g.Nodes[n.ID] = n
	}
	g.Edges = gj.Edges
	for _, e := range gj.Edges {
		key := [2]string{e.Source, e.Target}
		g.edgeByPair[key] = e
		g.outAdjacency[e.Source] = append(g.outAdjacency[e.Source], e.Target)
		g.inAdjacency[e.Target] = append(g.inAdjacency[e.Target], e.Source)
	}
	return nil
}
