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

	"github.com/kraklabs/charon/pkg/analysis/types"
)

func TestModuleIDPython(t *testing.T) {
	assert.Equal(t, "app.main", ModuleID("app/main.py", types.LangPython))
	assert.Equal(t, "app.utils", ModuleID("app/utils/__init__.py", types.LangPython))
}

func TestModuleIDTypeScript(t *testing.T) {
	assert.Equal(t, "src.components.Button", ModuleID("src/components/Button.tsx", types.LangTypeScript))
	assert.Equal(t, "src.components", ModuleID("src/components/index.ts", types.LangTypeScript))
}

func TestModuleIDGoUsesDotSeparator(t *testing.T) {
	assert.Equal(t, "pkg.analysis.graph.builder", ModuleID("pkg/analysis/graph/builder.go", types.LangGo))
}

func TestModuleIDRustStripsModLibMain(t *testing.T) {
	assert.Equal(t, "src::resolver", ModuleID("src/resolver/mod.rs", types.LangRust))
	assert.Equal(t, "src", ModuleID("src/lib.rs", types.LangRust))
}

func TestDetectServiceHeuristics(t *testing.T) {
	assert.Equal(t, "backend", DetectService("backend/app/main.py"))
	assert.Equal(t, "auth", DetectService("packages/auth/index.ts"))
	assert.Equal(t, "myapp", DetectService("myapp/handler.go"))
	assert.Equal(t, "main", DetectService("src/orphan.go"))
	assert.Equal(t, "", DetectService(""))
}
