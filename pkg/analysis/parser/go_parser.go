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

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// GoParser extracts import specs, struct/interface declarations, and
// func/method declarations from Go source (§4.1's Go row).
type GoParser struct {
	sitterParser *sitter.Parser
}

func NewGoParser() *GoParser {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoParser{sitterParser: p}
}

func (p *GoParser) Language() types.Language { return types.LangGo }

func (p *GoParser) ParseFile(path string, content []byte) (*ParsedFile, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pf := &ParsedFile{
		ModuleID: ModuleID(path, types.LangGo),
		Kind:     types.KindModule,
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_declaration":
			pf.Imports = append(pf.Imports, extractGoImportDecl(child, content)...)
		case "type_declaration":
			pf.TypeNames = append(pf.TypeNames, extractGoTypeNames(child, content)...)
		case "function_declaration", "method_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
			}
		}
	}

	return pf, nil
}

func extractGoImportDecl(node *sitter.Node, content []byte) []types.ParsedImport {
	var imports []types.ParsedImport
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			if imp := extractGoImportSpec(child, content); imp != nil {
				imports = append(imports, *imp)
			}
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() == "import_spec" {
					if imp := extractGoImportSpec(spec, content); imp != nil {
						imports = append(imports, *imp)
					}
				}
			}
		}
	}
	return imports
}

func extractGoImportSpec(node *sitter.Node, content []byte) *types.ParsedImport {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "interpreted_string_literal" {
				pathNode = node.Child(i)
				break
			}
		}
	}
	if pathNode == nil {
		return nil
	}
	raw := textOf(pathNode, content)
	raw = trimQuotes(raw)
	return &types.ParsedImport{Text: raw}
}

func extractGoTypeNames(node *sitter.Node, content []byte) []string {
	var names []string
	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			names = append(names, textOf(name, content))
		}
	}
	return names
}

func textOf(n *sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
