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

package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// JavaScriptParser extracts ES imports/re-exports, require()/dynamic
// import() calls, class/function declarations, and exports for both
// JavaScript and TypeScript (§4.1's JS/TS row); the two languages share a
// grammar family closely enough that one parser handles both, selecting
// its tree-sitter grammar at construction time.
type JavaScriptParser struct {
	lang         types.Language
	sitterParser *sitter.Parser
}

func NewJavaScriptParser(lang types.Language) *JavaScriptParser {
	p := sitter.NewParser()
	if lang == types.LangTypeScript {
		p.SetLanguage(typescript.GetLanguage())
	} else {
		p.SetLanguage(javascript.GetLanguage())
	}
	return &JavaScriptParser{lang: lang, sitterParser: p}
}

func (p *JavaScriptParser) Language() types.Language { return p.lang }

func (p *JavaScriptParser) ParseFile(path string, content []byte) (*ParsedFile, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pf := &ParsedFile{ModuleID: ModuleID(path, p.lang)}

	isComponentFile := strings.HasSuffix(path, ".jsx") || strings.HasSuffix(path, ".tsx")
	p.walk(root, content, pf)

	pf.Kind = jsDefinitionKind(path, string(content), isComponentFile)
	return pf, nil
}

func (p *JavaScriptParser) walk(node *sitter.Node, content []byte, pf *ParsedFile) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			if imp := extractJSImportStatement(child, content); imp != nil {
				pf.Imports = append(pf.Imports, *imp)
			}
		case "export_statement":
			extractJSExportStatement(child, content, pf)
		case "class_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.TypeNames = append(pf.TypeNames, textOf(name, content))
			}
		case "function_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
			}
		case "lexical_declaration", "variable_declaration":
			extractJSTopLevelConstFunctions(child, content, pf)
			for j := 0; j < int(child.NamedChildCount()); j++ {
				value := child.NamedChild(j).ChildByFieldName("value")
				if value != nil && value.Type() == "call_expression" {
					if imp := extractJSRequireOrDynamicImport(value, content); imp != nil {
						pf.Imports = append(pf.Imports, *imp)
					}
				}
			}
		case "call_expression":
			if imp := extractJSRequireOrDynamicImport(child, content); imp != nil {
				pf.Imports = append(pf.Imports, *imp)
			}
		case "expression_statement":
			p.walk(child, content, pf)
		}
	}
}

func extractJSImportStatement(node *sitter.Node, content []byte) *types.ParsedImport {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "string" {
				sourceNode = node.Child(i)
				break
			}
		}
	}
	if sourceNode == nil {
		return nil
	}
	src := trimQuotes(textOf(sourceNode, content))

	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			n := clause.NamedChild(j)
			switch n.Type() {
			case "identifier":
				names = append(names, textOf(n, content))
			case "namespace_import":
				names = append(names, textOf(n, content))
			case "named_imports":
				for k := 0; k < int(n.NamedChildCount()); k++ {
					spec := n.NamedChild(k)
					if spec.Type() == "import_specifier" {
						if nameNode := spec.ChildByFieldName("name"); nameNode != nil {
							names = append(names, textOf(nameNode, content))
						}
					}
				}
			}
		}
	}

	return &types.ParsedImport{
		Text:       src,
		Names:      names,
		IsRelative: strings.HasPrefix(src, "."),
	}
}

func extractJSExportStatement(node *sitter.Node, content []byte, pf *ParsedFile) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode != nil {
		// re-export: export { x } from 'y'
		src := trimQuotes(textOf(sourceNode, content))
		pf.Imports = append(pf.Imports, types.ParsedImport{Text: src, IsRelative: strings.HasPrefix(src, ".")})
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		n := node.NamedChild(i)
		switch n.Type() {
		case "class_declaration", "function_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				pf.Exports = append(pf.Exports, textOf(name, content))
				if n.Type() == "class_declaration" {
					pf.TypeNames = append(pf.TypeNames, textOf(name, content))
				} else {
					pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
				}
			}
		case "lexical_declaration", "variable_declaration":
			extractJSTopLevelConstFunctions(n, content, pf)
			for j := 0; j < int(n.NamedChildCount()); j++ {
				decl := n.NamedChild(j)
				if decl.Type() == "variable_declarator" {
					if name := decl.ChildByFieldName("name"); name != nil {
						pf.Exports = append(pf.Exports, textOf(name, content))
					}
				}
			}
		case "export_clause":
			for j := 0; j < int(n.NamedChildCount()); j++ {
				spec := n.NamedChild(j)
				if spec.Type() == "export_specifier" {
					if name := spec.ChildByFieldName("name"); name != nil {
						pf.Exports = append(pf.Exports, textOf(name, content))
					}
				}
			}
		}
	}
}

func extractJSTopLevelConstFunctions(node *sitter.Node, content []byte, pf *ParsedFile) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		if value.Type() == "arrow_function" || value.Type() == "function" {
			if name := decl.ChildByFieldName("name"); name != nil {
				pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
			}
		}
	}
}

func extractJSRequireOrDynamicImport(node *sitter.Node, content []byte) *types.ParsedImport {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	name := textOf(fn, content)
	if name != "require" && name != "import" {
		return nil
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return nil
	}
	src := trimQuotes(textOf(arg, content))
	return &types.ParsedImport{Text: src, IsRelative: strings.HasPrefix(src, ".")}
}

func jsDefinitionKind(path, content string, isComponentFile bool) types.NodeKind {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	nameNoExt := strings.TrimSuffix(base, extensionOf(base))
	if strings.HasPrefix(nameNoExt, "use") {
		return types.KindHook
	}
	looksLikeComponent := strings.Contains(content, "<") || strings.Contains(content, "React") ||
		strings.Contains(content, "jsx") || strings.Contains(content, "tsx") || strings.Contains(content, "return (")
	exportsSomething := strings.Contains(content, "export default") || strings.Contains(content, "export function") ||
		strings.Contains(content, "export const")
	if (isComponentFile || looksLikeComponent) && exportsSomething {
		return types.KindComponent
	}
	return types.KindModule
}
