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

// Package complexity computes the Python-only cyclomatic complexity and
// maintainability index figures of §4.9. There is no Go equivalent of
// radon in the retrieval pack, so McCabe counting and the maintainability
// formula are implemented directly over the tree-sitter parse tree using
// the same node-walking idiom as pkg/analysis/parser.
package complexity

import (
	"context"
	"math"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/charon/pkg/analysis/metrics"
)

// decisionNodeTypes are the Python grammar node kinds that add one to
// McCabe complexity: every branch/loop/boolean-join point.
var decisionNodeTypes = map[string]bool{
	"if_statement":        true,
	"elif_clause":         true,
	"for_statement":       true,
	"while_statement":     true,
	"except_clause":       true,
	"with_statement":      true,
	"boolean_operator":    true,
	"conditional_expression": true,
	"assert_statement":    true,
	"comprehension_if":    true,
}

// functionNodeTypes mark the boundary of a complexity unit.
var functionNodeTypes = map[string]bool{
	"function_definition": true,
}

// Metrics is one file's complexity summary (§4.9's ComplexityMetrics).
type Metrics struct {
	CyclomaticComplexity float64
	MaxComplexity        int
	MaintainabilityIndex float64
	LinesOfCode          int
	LogicalLines         int
	SourceLines          int
	Comments             int
	ComplexityGrade      string
	MaintainabilityGrade string
	FunctionCount        int
	Error                string
}

// Analyzer wraps a dedicated Python tree-sitter parser used only for
// complexity walks, independent of the import-extraction parser in
// pkg/analysis/parser so the two concerns stay decoupled.
type Analyzer struct {
	sitterParser *sitter.Parser
}

func NewAnalyzer() *Analyzer {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Analyzer{sitterParser: p}
}

// AnalyzeFile computes complexity metrics for one Python source file
// (§4.9). On any parse failure it returns a zero-valued Metrics carrying
// the error, mirroring the degrade-not-fail behavior of the rest of the
// pipeline.
func (a *Analyzer) AnalyzeFile(content []byte) Metrics {
	tree, err := a.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return Metrics{ComplexityGrade: "-", MaintainabilityGrade: "-", Error: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()

	var complexities []int
	collectFunctionComplexities(root, &complexities)

	total := 0
	maxC := 0
	for _, c := range complexities {
		total += c
		if c > maxC {
			maxC = c
		}
	}
	avg := 0.0
	if len(complexities) > 0 {
		avg = float64(total) / float64(len(complexities))
	}

	raw := rawMetrics(content)
	halstead := halsteadVolume(root, content)
	mi := maintainabilityIndex(halstead, avg, raw.logicalLines, raw.commentRatio())

	return Metrics{
		CyclomaticComplexity: round2(avg),
		MaxComplexity:        maxC,
		MaintainabilityIndex: round2(mi),
		LinesOfCode:          raw.loc,
		LogicalLines:         raw.logicalLines,
		SourceLines:          raw.sourceLines,
		Comments:             raw.comments,
		ComplexityGrade:      ccRank(avg),
		MaintainabilityGrade: maintainabilityGrade(mi),
		FunctionCount:        len(complexities),
	}
}

// ToMetricsInput adapts a complexity summary to the bridge type the
// Metrics Engine consumes (§4.5), keeping the two packages decoupled.
func (m Metrics) ToMetricsInput() metrics.ComplexityInput {
	return metrics.ComplexityInput{
		AvgComplexity:        m.CyclomaticComplexity,
		MaxComplexity:        m.MaxComplexity,
		MaintainabilityIdx:   m.MaintainabilityIndex,
		LinesOfCode:          m.LinesOfCode,
		ComplexityGrade:      m.ComplexityGrade,
		MaintainabilityGrade: m.MaintainabilityGrade,
	}
}

// collectFunctionComplexities walks the tree, recording one McCabe
// complexity value per top-level and nested function definition. Each
// function starts at complexity 1 (the base path) and gains one per
// decision point found within its own body (not counting nested
// function bodies, which are scored independently).
func collectFunctionComplexities(node *sitter.Node, out *[]int) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if functionNodeTypes[child.Type()] {
			*out = append(*out, 1+countDecisions(child))
		}
		collectFunctionComplexities(child, out)
	}
}

// countDecisions counts decision points within a function body, not
// descending into nested function definitions (they are their own
// complexity units).
func countDecisions(node *sitter.Node) int {
	count := 0
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if functionNodeTypes[child.Type()] {
			continue
		}
		if decisionNodeTypes[child.Type()] {
			count++
		}
		count += countDecisions(child)
	}
	return count
}

// ccRank maps an average complexity to radon's A-F letter scale.
func ccRank(cc float64) string {
	switch {
	case cc <= 5:
		return "A"
	case cc <= 10:
		return "B"
	case cc <= 20:
		return "C"
	case cc <= 30:
		return "D"
	case cc <= 40:
		return "E"
	default:
		return "F"
	}
}

// maintainabilityGrade applies §4.9's granular maintainability scale.
func maintainabilityGrade(mi float64) string {
	switch {
	case mi >= 85:
		return "A"
	case mi >= 65:
		return "B"
	case mi >= 40:
		return "C"
	case mi >= 20:
		return "D"
	default:
		return "F"
	}
}

type rawCounts struct {
	loc          int
	logicalLines int
	sourceLines  int
	comments     int
}

func (r rawCounts) commentRatio() float64 {
	if r.loc == 0 {
		return 0
	}
	return float64(r.comments) / float64(r.loc)
}

// rawMetrics derives line counts the way radon.raw.analyze does: total
// lines, blank-stripped source lines, and lines whose first non-blank
// token is a comment.
func rawMetrics(content []byte) rawCounts {
	lines := strings.Split(string(content), "\n")
	var r rawCounts
	r.loc = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		r.sourceLines++
		if strings.HasPrefix(trimmed, "#") {
			r.comments++
			continue
		}
		r.logicalLines++
	}
	return r
}

// halsteadVolume computes the Halstead volume (distinct and total
// operator/operand counts) over the parse tree's leaf tokens. There is
// no direct tree-sitter equivalent of radon's tokenizer, so leaves are
// classified heuristically: identifiers/literals are operands, every
// other named or punctuation leaf is an operator.
func halsteadVolume(root *sitter.Node, content []byte) float64 {
	operators := map[string]int{}
	operands := map[string]int{}
	walkLeaves(root, content, operators, operands)

	n1 := len(operators)
	n2 := len(operands)
	bigN1 := sumValues(operators)
	bigN2 := sumValues(operands)

	vocabulary := n1 + n2
	length := bigN1 + bigN2
	if vocabulary == 0 || length == 0 {
		return 0
	}
	return float64(length) * math.Log2(float64(vocabulary))
}

func walkLeaves(node *sitter.Node, content []byte, operators, operands map[string]int) {
	if node.ChildCount() == 0 {
		text := textOf(node, content)
		if text == "" {
			return
		}
		switch node.Type() {
		case "identifier", "integer", "float", "string", "true", "false", "none":
			operands[text]++
		default:
			operators[node.Type()]++
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkLeaves(node.Child(i), content, operators, operands)
	}
}

func sumValues(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// maintainabilityIndex applies radon's documented MI formula, normalized
// to the 0-100 scale and floored at zero (§4.9).
func maintainabilityIndex(volume, avgComplexity float64, logicalLines int, commentRatio float64) float64 {
	if volume <= 0 || logicalLines <= 0 {
		return 100
	}
	mi := 171 - 5.2*math.Log(volume) - 0.23*avgComplexity - 16.2*math.Log(float64(logicalLines))
	if commentRatio > 0 {
		mi += 50 * math.Sin(math.Sqrt(2.4*commentRatio))
	}
	mi = mi * 100 / 171
	if mi < 0 {
		mi = 0
	}
	if mi > 100 {
		mi = 100
	}
	return mi
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func textOf(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) {
		return ""
	}
	return string(content[start:end])
}
