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

const rustSource = `use crate::resolver::rust;
use serde::{Deserialize, Serialize};
use std::collections::HashMap;

mod helper;

pub struct Widget {
    name: String,
}

impl Widget {
    pub fn render(&self) -> String {
        self.name.clone()
    }
}
`

func TestRustParserExtractsUseDeclarationsAndGroups(t *testing.T) {
	p := NewRustParser()
	pf, err := p.ParseFile("src/resolver/mod.rs", []byte(rustSource))
	require.NoError(t, err)

	assert.Equal(t, "src::resolver", pf.ModuleID)
	assert.Equal(t, types.KindModule, pf.Kind)
	assert.Contains(t, pf.TypeNames, "Widget")
	assert.Contains(t, pf.FunctionNames, "render")

	var texts []string
	for _, imp := range pf.Imports {
		texts = append(texts, imp.Text)
	}
	assert.Contains(t, texts, "crate::resolver::rust")
	assert.Contains(t, texts, "serde::Deserialize")
	assert.Contains(t, texts, "serde::Serialize")
	assert.Contains(t, texts, "std::collections::HashMap")
}

func TestRustParserBodylessModIsRelativeImport(t *testing.T) {
	p := NewRustParser()
	pf, err := p.ParseFile("src/resolver/mod.rs", []byte(rustSource))
	require.NoError(t, err)

	found := false
	for _, imp := range pf.Imports {
		if imp.Text == "helper" && imp.IsRelative {
			found = true
		}
	}
	assert.True(t, found, "bodyless `mod helper;` should produce a relative import named helper")
}

func TestRustParserLanguage(t *testing.T) {
	assert.Equal(t, types.LangRust, NewRustParser().Language())
}
