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
	"github.com/smacker/go-tree-sitter/java"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// JavaParser extracts import declarations (flagging `*` wildcards;
// `static` imports are recorded like ordinary ones),
// class/interface/enum/record declarations, and methods/constructors
// (§4.1's Java row).
type JavaParser struct {
	sitterParser *sitter.Parser
}

func NewJavaParser() *JavaParser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &JavaParser{sitterParser: p}
}

func (p *JavaParser) Language() types.Language { return types.LangJava }

func (p *JavaParser) ParseFile(path string, content []byte) (*ParsedFile, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pf := &ParsedFile{ModuleID: ModuleID(path, types.LangJava), Kind: types.KindModule}

	p.walk(root, content, pf)
	return pf, nil
}

func (p *JavaParser) walk(node *sitter.Node, content []byte, pf *ParsedFile) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_declaration":
			if imp := extractJavaImport(child, content); imp != nil {
				pf.Imports = append(pf.Imports, *imp)
			}
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if child.Type() == "interface_declaration" {
				pf.Kind = types.KindInterface
			} else if pf.Kind == types.KindModule {
				pf.Kind = types.KindClass
			}
			if name := child.ChildByFieldName("name"); name != nil {
				pf.TypeNames = append(pf.TypeNames, textOf(name, content))
			}
			if body := child.ChildByFieldName("body"); body != nil {
				p.walk(body, content, pf)
			}
		case "method_declaration", "constructor_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
			}
		}
	}
}

func extractJavaImport(node *sitter.Node, content []byte) *types.ParsedImport {
	var fqcn string
	isStatic := false
	isWildcard := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "static":
			isStatic = true
		case "scoped_identifier", "identifier":
			fqcn = textOf(child, content)
		case "asterisk":
			isWildcard = true
		}
	}
	if fqcn == "" {
		return nil
	}
	_ = isStatic
	names := []string(nil)
	if isWildcard {
		names = []string{"*"}
	}
	return &types.ParsedImport{Text: fqcn, Names: names}
}
