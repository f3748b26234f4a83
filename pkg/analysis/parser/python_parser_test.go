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

const pySource = `import os
from app.utils import helper
from . import sibling
from ..shared import constants

class Widget:
    def render(self):
        pass

def standalone():
    pass
`

func TestPythonParserExtractsImportsAndDefinitions(t *testing.T) {
	p := NewPythonParser()
	pf, err := p.ParseFile("app/widgets.py", []byte(pySource))
	require.NoError(t, err)

	assert.Equal(t, "app.widgets", pf.ModuleID)
	assert.Equal(t, types.KindClass, pf.Kind)
	assert.Contains(t, pf.TypeNames, "Widget")
	assert.Contains(t, pf.FunctionNames, "standalone")

	var names []string
	for _, imp := range pf.Imports {
		names = append(names, imp.Text)
	}
	assert.Contains(t, names, "os")
	assert.Contains(t, names, "app.utils")

	var relativeCount int
	for _, imp := range pf.Imports {
		if imp.IsRelative {
			relativeCount++
		}
	}
	assert.GreaterOrEqual(t, relativeCount, 2, "the two relative from-imports must be flagged")
}

func TestPythonParserServiceKindFromPath(t *testing.T) {
	p := NewPythonParser()
	pf, err := p.ParseFile("app/user_service.py", []byte("def f():\n    pass\n"))
	require.NoError(t, err)
	assert.Equal(t, types.KindService, pf.Kind)
}

func TestPythonParserModuleKindWithoutClass(t *testing.T) {
	p := NewPythonParser()
	pf, err := p.ParseFile("app/helpers.py", []byte("def f():\n    pass\n"))
	require.NoError(t, err)
	assert.Equal(t, types.KindModule, pf.Kind)
}

func TestPythonParserLanguage(t *testing.T) {
	assert.Equal(t, types.LangPython, NewPythonParser().Language())
}
