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

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

func TestJavaScriptResolverNodeBuiltin(t *testing.T) {
	r := &JavaScriptResolver{lang: types.LangJavaScript}
	ctx := NewProjectContext()

	res := r.Resolve(types.ParsedImport{Text: "fs"}, "src.main", ctx)
	assert.Equal(t, types.ResolutionStdlib, res.Kind)

	res = r.Resolve(types.ParsedImport{Text: "node:path"}, "src.main", ctx)
	assert.Equal(t, types.ResolutionStdlib, res.Kind)
	assert.Equal(t, "path", res.StdlibPkg)
}

func TestJavaScriptResolverRelativeImport(t *testing.T) {
	r := &JavaScriptResolver{lang: types.LangTypeScript}
	ctx := NewProjectContext()

	res := r.Resolve(types.ParsedImport{Text: "./helper"}, "src.main", ctx)

	assert.Equal(t, types.ResolutionInternal, res.Kind)
	assert.Equal(t, "src.helper", res.ModuleID)
}

// TestJavaScriptResolverS2PathAlias is scenario S2: a TypeScript specifier
// using a tsconfig "@lib/*" path alias resolves to the aliased internal
// module rather than falling through to an external package.
func TestJavaScriptResolverS2PathAlias(t *testing.T) {
	r := &JavaScriptResolver{lang: types.LangTypeScript}
	ctx := NewProjectContext()
	ctx.TSConfigBaseURL = "src"
	ctx.TSConfigPaths["@lib/*"] = []string{"lib/*"}

	res := r.Resolve(types.ParsedImport{Text: "@lib/format"}, "src.app.main", ctx)

	assert.Equal(t, types.ResolutionInternal, res.Kind)
	assert.Equal(t, "src.lib.format", res.ModuleID)
}

func TestJavaScriptResolverExternalWithVersion(t *testing.T) {
	r := &JavaScriptResolver{lang: types.LangJavaScript}
	ctx := NewProjectContext()
	ctx.PackageJSONDeps["lodash"] = "^4.17.21"

	res := r.Resolve(types.ParsedImport{Text: "lodash/debounce"}, "src.main", ctx)

	assert.Equal(t, types.ResolutionExternal, res.Kind)
	assert.Equal(t, "lodash", res.Package)
	assert.Equal(t, "^4.17.21", res.Version)
}

func TestJavaScriptResolverScopedExternalPackage(t *testing.T) {
	r := &JavaScriptResolver{lang: types.LangJavaScript}
	ctx := NewProjectContext()

	res := r.Resolve(types.ParsedImport{Text: "@scope/pkg/sub"}, "src.main", ctx)

	assert.Equal(t, types.ResolutionExternal, res.Kind)
	assert.Equal(t, "@scope/pkg", res.Package)
}
