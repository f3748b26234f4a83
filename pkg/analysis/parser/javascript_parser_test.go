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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

const jsSource = `import React from 'react';
import { helper } from './helper';
const { debounce } = require('lodash');

export class Widget {
  render() {
    return 1;
  }
}

export function formatLabel(x) {
  return x;
}
`

func TestJavaScriptParserExtractsImportsAndDeclarations(t *testing.T) {
	p := NewJavaScriptParser(types.LangJavaScript)
	pf, err := p.ParseFile("src/widget.js", []byte(jsSource))
	require.NoError(t, err)

	assert.Equal(t, "src.widget", pf.ModuleID)
	assert.Contains(t, pf.TypeNames, "Widget")
	assert.Contains(t, pf.Exports, "Widget")
	assert.Contains(t, pf.Exports, "formatLabel")

	var names []string
	var relative []bool
	for _, imp := range pf.Imports {
		names = append(names, imp.Text)
		relative = append(relative, imp.IsRelative)
	}
	assert.Contains(t, names, "react")
	assert.Contains(t, names, "./helper")
	assert.Contains(t, names, "lodash")

	for i, n := range names {
		if n == "./helper" {
			assert.True(t, relative[i])
		}
		if n == "react" {
			assert.False(t, relative[i])
		}
	}
}

func TestJavaScriptParserSelectsTypeScriptGrammar(t *testing.T) {
	p := NewJavaScriptParser(types.LangTypeScript)
	assert.Equal(t, types.LangTypeScript, p.Language())

	pf, err := p.ParseFile("src/widget.ts", []byte(`export const value: number = 1;`))
	require.NoError(t, err)
	assert.Equal(t, "src.widget", pf.ModuleID)
}

func TestJSDefinitionKindDetectsComponent(t *testing.T) {
	content := `export default function Widget() {
  return (<div>hi</div>);
}
`
	kind := jsDefinitionKind("src/Widget.tsx", content, true)
	assert.Equal(t, types.KindComponent, kind)
}

func TestJSDefinitionKindDetectsHook(t *testing.T) {
	kind := jsDefinitionKind("src/useWidget.ts", `export function useWidget() { return 1; }`, false)
	assert.Equal(t, types.KindHook, kind)
}

func TestJSDefinitionKindDefaultsToModule(t *testing.T) {
	kind := jsDefinitionKind("src/util.ts", `export function helper() { return 1; }`, false)
	assert.Equal(t, types.KindModule, kind)
}
