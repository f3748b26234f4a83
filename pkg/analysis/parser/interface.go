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

// Package parser implements the parser registry and the six
// tree-sitter-backed language parsers of §4.1: each exposes a uniform
// query over imports, type declarations, and functions for one file.
package parser

import (
	"fmt"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// ParsedFile is the per-file output of a LanguageParser: the top-of-file
// Module node (id, kind, imports, exports) plus the names of the
// top-level type and function definitions it contains. Only the Module
// node participates in graph construction; the type/function names round
// out the §4.1 contract for display and future enrichment.
type ParsedFile struct {
	ModuleID      string
	Kind          types.NodeKind
	Imports       []types.ParsedImport
	Exports       []string
	TypeNames     []string
	FunctionNames []string
}

// LanguageParser is the capability interface every language variant
// implements (§9's "closed sum type plus a capability trait").
type LanguageParser interface {
	Language() types.Language
	ParseFile(path string, content []byte) (*ParsedFile, error)
}

// ParseErrorMessage formats the fixed error-policy string of §4.1: a
// single string appended to the analysis warnings list; the caller
// continues with the remaining files.
func ParseErrorMessage(path string, err error) string {
	return fmt.Sprintf("Parse error in %s: %v", path, err)
}
