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
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// PythonParser extracts import/from-import statements, class definitions,
// and def statements (§4.1's Python row), plus the Service/Class/Module
// definition-kind heuristic of §4.1.
type PythonParser struct {
	sitterParser *sitter.Parser
}

func NewPythonParser() *PythonParser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonParser{sitterParser: p}
}

func (p *PythonParser) Language() types.Language { return types.LangPython }

func (p *PythonParser) ParseFile(path string, content []byte) (*ParsedFile, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pf := &ParsedFile{ModuleID: ModuleID(path, types.LangPython)}

	hasClass := false
	p.walk(root, content, pf, &hasClass)

	pf.Kind = pythonDefinitionKind(path, hasClass)
	return pf, nil
}

func (p *PythonParser) walk(node *sitter.Node, content []byte, pf *ParsedFile, hasClass *bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			pf.Imports = append(pf.Imports, extractPyImportStatement(child, content)...)
		case "import_from_statement":
			if imp := extractPyFromImport(child, content); imp != nil {
				pf.Imports = append(pf.Imports, *imp)
			}
		case "class_definition":
			*hasClass = true
			if name := child.ChildByFieldName("name"); name != nil {
				pf.TypeNames = append(pf.TypeNames, textOf(name, content))
			}
		case "function_definition":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
			}
		case "decorated_definition":
			p.walk(child, content, pf, hasClass)
		}
	}
}

func pythonDefinitionKind(path string, hasClass bool) types.NodeKind {
	base := strings.ToLower(path)
	if strings.Contains(base, "service") {
		return types.KindService
	}
	if hasClass {
		return types.KindClass
	}
	return types.KindModule
}

func extractPyImportStatement(node *sitter.Node, content []byte) []types.ParsedImport {
	var imports []types.ParsedImport
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			imports = append(imports, types.ParsedImport{Text: textOf(child, content)})
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				imports = append(imports, types.ParsedImport{Text: textOf(name, content)})
			}
		}
	}
	return imports
}

func extractPyFromImport(node *sitter.Node, content []byte) *types.ParsedImport {
	level := 0
	var moduleText string
	var names []string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "relative_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				n := child.NamedChild(j)
				switch n.Type() {
				case "import_prefix":
					level = strings.Count(textOf(n, content), ".")
				case "dotted_name":
					moduleText = textOf(n, content)
				}
			}
		case "import_prefix":
			level = strings.Count(textOf(child, content), ".")
		case "dotted_name":
			if moduleText == "" {
				moduleText = textOf(child, content)
			} else {
				names = append(names, textOf(child, content))
			}
		case "wildcard_import":
			names = append(names, "*")
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				names = append(names, textOf(name, content))
			}
		case "import_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				n := child.NamedChild(j)
				switch n.Type() {
				case "dotted_name":
					names = append(names, textOf(n, content))
				case "aliased_import":
					if name := n.ChildByFieldName("name"); name != nil {
						names = append(names, textOf(name, content))
					}
				}
			}
		}
	}

	return &types.ParsedImport{
		Text:       moduleText,
		Names:      names,
		IsRelative: level > 0,
		Level:      level,
	}
}
