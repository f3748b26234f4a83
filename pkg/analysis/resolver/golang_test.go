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

func TestGoResolverStdlib(t *testing.T) {
	r := &GoResolver{}
	ctx := NewProjectContext()

	res := r.Resolve(types.ParsedImport{Text: "net/http"}, "app.main", ctx)
	assert.Equal(t, types.ResolutionStdlib, res.Kind)
	assert.Equal(t, "net", res.StdlibPkg)
}

// TestGoResolverInternalModulePath matches parser.ModuleID's own
// derivation: a package import resolves to the file-level module id
// parsing actually produced for a file under that package directory
// (pkg/analysis/types/types.go -> "pkg.analysis.types.types"), not a
// path prefixed with the go.mod module name.
func TestGoResolverInternalModulePath(t *testing.T) {
	r := &GoResolver{}
	ctx := NewProjectContext()
	ctx.GoModuleName = "github.com/kraklabs/charon"
	ctx.ProjectModules["pkg.analysis.types.types"] = true

	res := r.Resolve(types.ParsedImport{Text: "github.com/kraklabs/charon/pkg/analysis/types"}, "charon.main", ctx)
	assert.Equal(t, types.ResolutionInternal, res.Kind)
	assert.Equal(t, "pkg.analysis.types.types", res.ModuleID)
}

func TestGoResolverInternalModulePathPicksLowestWhenMultipleFilesShareAPackage(t *testing.T) {
	r := &GoResolver{}
	ctx := NewProjectContext()
	ctx.GoModuleName = "github.com/kraklabs/charon"
	ctx.ProjectModules["pkg.analysis.types.types"] = true
	ctx.ProjectModules["pkg.analysis.types.graph"] = true

	res := r.Resolve(types.ParsedImport{Text: "github.com/kraklabs/charon/pkg/analysis/types"}, "charon.main", ctx)
	assert.Equal(t, types.ResolutionInternal, res.Kind)
	assert.Equal(t, "pkg.analysis.types.graph", res.ModuleID, "must deterministically pick the same candidate every run")
}

func TestGoResolverInternalModulePathFallsBackWhenNoFileKnownYet(t *testing.T) {
	r := &GoResolver{}
	ctx := NewProjectContext()
	ctx.GoModuleName = "github.com/kraklabs/charon"

	res := r.Resolve(types.ParsedImport{Text: "github.com/kraklabs/charon/pkg/analysis/types"}, "charon.main", ctx)
	assert.Equal(t, types.ResolutionInternal, res.Kind)
	assert.Equal(t, "pkg.analysis.types", res.ModuleID)
}

func TestGoResolverInternalRootPackage(t *testing.T) {
	r := &GoResolver{}
	ctx := NewProjectContext()
	ctx.GoModuleName = "github.com/kraklabs/charon"

	res := r.Resolve(types.ParsedImport{Text: "github.com/kraklabs/charon"}, "charon.main", ctx)
	assert.Equal(t, types.ResolutionInternal, res.Kind)
	assert.Equal(t, "github.com/kraklabs/charon", res.ModuleID)
}

func TestGoResolverExternalPackage(t *testing.T) {
	r := &GoResolver{}
	ctx := NewProjectContext()
	ctx.GoModuleName = "github.com/kraklabs/charon"

	res := r.Resolve(types.ParsedImport{Text: "github.com/sabhiram/go-gitignore"}, "charon.main", ctx)
	assert.Equal(t, types.ResolutionExternal, res.Kind)
	assert.Equal(t, "github.com", res.Package)
}

func TestGoResolverLanguage(t *testing.T) {
	assert.Equal(t, types.LangGo, (&GoResolver{}).Language())
}
