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

package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/charon/pkg/analysis/resolver"
	"github.com/kraklabs/charon/pkg/analysis/types"
)

// TestAnalyzeS1CrossModulePythonImport is scenario S1: app/main.py imports
// a helper from app/utils.py, plus an external `requests` import.
func TestAnalyzeS1CrossModulePythonImport(t *testing.T) {
	files := []types.File{
		{Path: "app/main.py", Content: []byte("import requests\nfrom app.utils import helper\n\nhelper()\n")},
		{Path: "app/utils.py", Content: []byte("def helper():\n    pass\n")},
	}

	d := New(nil)
	var milestones []int
	analysis, err := d.Analyze(context.Background(), "app", files, nil, func(step int, label string) {
		milestones = append(milestones, step)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{StepFetch, StepParse, StepResolve, StepBuild}, milestones)
	assert.Equal(t, 2, analysis.TotalFiles)
	assert.True(t, analysis.Dependencies["app.main"]["app.utils"])
	assert.True(t, analysis.Dependencies["app.main"][types.ThirdPartyNodeID("requests")])
	assert.True(t, analysis.ThirdPartyByModule["app.main"]["requests"])
	assert.Equal(t, []string{"helper"}, analysis.ImportDetails[[2]string{"app.main", "app.utils"}])
	assert.Empty(t, analysis.Warnings)
}

// TestAnalyzeGoCrossPackageImport confirms a Go package import resolves
// to the actual file-level module id of a file living under that
// package's directory (cmd.app.main -> pkg.util.helper), not a path
// prefixed with the go.mod module name, and that a module-name-prefixed
// import with no known file underneath it degrades to a coalesced
// third-party node instead of a dangling, unprefixed internal id.
func TestAnalyzeGoCrossPackageImport(t *testing.T) {
	files := []types.File{
		{Path: "cmd/app/main.go", Content: []byte(`package main

import (
	"fmt"

	"github.com/kraklabs/charon/pkg/util"
	"github.com/kraklabs/charon/pkg/phantom"
)

func main() {
	fmt.Println(util.Helper())
	phantom.DoSomething()
}
`)},
		{Path: "pkg/util/helper.go", Content: []byte(`package util

func Helper() string {
	return "hi"
}
`)},
	}
	ctx := resolver.NewProjectContext()
	ctx.GoModuleName = "github.com/kraklabs/charon"

	d := New(nil)
	analysis, err := d.Analyze(context.Background(), "charon", files, map[types.Language]*resolver.ProjectContext{
		types.LangGo: ctx,
	}, nil)
	require.NoError(t, err)

	assert.True(t, analysis.Dependencies["cmd.app.main"]["pkg.util.helper"],
		"a Go package import must resolve to the importee's real file-level module id")
	assert.True(t, analysis.Dependencies["cmd.app.main"][types.ThirdPartyNodeID("pkg")],
		"an internal-looking import with no known file underneath must degrade to a coalesced third-party node")
	assert.True(t, analysis.ThirdPartyByModule["cmd.app.main"]["pkg"])
}

// TestAnalyzeRustS6CrateImport is scenario S6: src/main.rs's
// `use crate::utils::helper;` must resolve to the sibling file's real
// module id (src::utils), not the bare item path crate::utils::helper
// would produce in isolation, and `use serde::Deserialize;` must land on
// a third_party.serde node.
func TestAnalyzeRustS6CrateImport(t *testing.T) {
	files := []types.File{
		{Path: "src/main.rs", Content: []byte(`use crate::utils::helper;
use serde::Deserialize;

fn main() {
    helper();
}
`)},
		{Path: "src/utils.rs", Content: []byte(`pub fn helper() {}
`)},
	}
	ctx := resolver.NewProjectContext()
	ctx.RustCrateName = "myapp"

	d := New(nil)
	analysis, err := d.Analyze(context.Background(), "myapp", files, map[types.Language]*resolver.ProjectContext{
		types.LangRust: ctx,
	}, nil)
	require.NoError(t, err)

	assert.True(t, analysis.Dependencies["src"]["src::utils"],
		"crate::utils::helper must resolve to the sibling file's real module id")
	assert.True(t, analysis.Dependencies["src"][types.ThirdPartyNodeID("serde")])
}

func TestAnalyzeContinuesPastOneMalformedFile(t *testing.T) {
	files := []types.File{
		{Path: "app/broken.py", Content: []byte("def f(:\n")},
		{Path: "app/ok.py", Content: []byte("def ok():\n    pass\n")},
	}

	d := New(nil)
	analysis, err := d.Analyze(context.Background(), "app", files, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, analysis.ModuleMetadata, "app.ok")
}

func TestAnalyzeSkipsUnknownExtensions(t *testing.T) {
	files := []types.File{
		{Path: "README.md", Content: []byte("# hello\n")},
	}

	d := New(nil)
	analysis, err := d.Analyze(context.Background(), "proj", files, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, analysis.ModuleMetadata)
}

// TestAnalyzeUsesProvidedProjectContext confirms a caller-supplied
// ProjectContext (e.g. seeded from go.mod/tsconfig.json) reaches the
// resolver rather than being silently replaced.
func TestAnalyzeUsesProvidedProjectContext(t *testing.T) {
	files := []types.File{
		{Path: "src/main.rs", Content: nil},
	}
	ctx := resolver.NewProjectContext()
	ctx.RustCrateName = "myapp"

	d := New(nil)
	_, err := d.Analyze(context.Background(), "proj", files, map[types.Language]*resolver.ProjectContext{
		types.LangRust: ctx,
	}, nil)
	require.NoError(t, err)
	assert.True(t, ctx.ProjectModules["main"] || len(ctx.ProjectModules) >= 1)
}
