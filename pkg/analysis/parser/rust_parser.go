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
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// RustParser extracts `use` paths (including `a::{b,c}` groups and
// wildcards), bodyless `mod name;` declarations as synthetic relative
// imports, struct/enum/trait/impl declarations, and fn items (§4.1's
// Rust row).
type RustParser struct {
	sitterParser *sitter.Parser
}

func NewRustParser() *RustParser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &RustParser{sitterParser: p}
}

func (p *RustParser) Language() types.Language { return types.LangRust }

func (p *RustParser) ParseFile(path string, content []byte) (*ParsedFile, error) {
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pf := &ParsedFile{ModuleID: ModuleID(path, types.LangRust), Kind: types.KindModule}

	p.walk(root, content, pf)
	return pf, nil
}

func (p *RustParser) walk(node *sitter.Node, content []byte, pf *ParsedFile) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "use_declaration":
			pf.Imports = append(pf.Imports, extractRustUseDeclaration(child, content)...)
		case "mod_item":
			// A bodyless `mod name;` acts as a local/relative import.
			if child.ChildByFieldName("body") == nil {
				if name := child.ChildByFieldName("name"); name != nil {
					pf.Imports = append(pf.Imports, types.ParsedImport{
						Text:       textOf(name, content),
						IsRelative: true,
					})
				}
			}
		case "struct_item", "enum_item", "trait_item":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.TypeNames = append(pf.TypeNames, textOf(name, content))
			}
		case "impl_item":
			if typ := child.ChildByFieldName("type"); typ != nil {
				pf.TypeNames = append(pf.TypeNames, textOf(typ, content))
			}
			if body := child.ChildByFieldName("body"); body != nil {
				p.walk(body, content, pf)
			}
		case "function_item":
			if name := child.ChildByFieldName("name"); name != nil {
				pf.FunctionNames = append(pf.FunctionNames, textOf(name, content))
			}
		}
	}
}

func extractRustUseDeclaration(node *sitter.Node, content []byte) []types.ParsedImport {
	argNode := node.ChildByFieldName("argument")
	if argNode == nil {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			t := node.NamedChild(i).Type()
			if t == "scoped_identifier" || t == "scoped_use_list" || t == "use_wildcard" || t == "identifier" {
				argNode = node.NamedChild(i)
				break
			}
		}
	}
	if argNode == nil {
		return nil
	}
	return flattenRustUseTree(argNode, "", content)
}

// flattenRustUseTree expands `a::{b, c}` groups and `a::*` wildcards into
// one ParsedImport per leaf path, each carrying the full `::` path as
// Text so the resolver can classify it against crate/stdlib/external
// rules uniformly.
func flattenRustUseTree(node *sitter.Node, prefix string, content []byte) []types.ParsedImport {
	switch node.Type() {
	case "scoped_identifier":
		path, name := node.ChildByFieldName("path"), node.ChildByFieldName("name")
		full := textOf(node, content)
		if path != nil && name != nil {
			full = strings.TrimSpace(textOf(path, content) + "::" + textOf(name, content))
		}
		return []types.ParsedImport{{Text: joinRustPrefix(prefix, full)}}
	case "scoped_use_list":
		path := node.ChildByFieldName("path")
		base := prefix
		if path != nil {
			base = joinRustPrefix(prefix, textOf(path, content))
		}
		list := node.ChildByFieldName("list")
		var out []types.ParsedImport
		if list != nil {
			for i := 0; i < int(list.NamedChildCount()); i++ {
				out = append(out, flattenRustUseTree(list.NamedChild(i), base, content)...)
			}
		}
		return out
	case "use_wildcard":
		path := node.ChildByFieldName("path")
		base := prefix
		if path != nil {
			base = joinRustPrefix(prefix, textOf(path, content))
		}
		return []types.ParsedImport{{Text: base, Names: []string{"*"}}}
	case "use_as_clause":
		if path := node.ChildByFieldName("path"); path != nil {
			return flattenRustUseTree(path, prefix, content)
		}
		return nil
	default: // identifier, self, super, crate
		return []types.ParsedImport{{Text: joinRustPrefix(prefix, textOf(node, content))}}
	}
}

func joinRustPrefix(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return prefix + "::" + path
}
