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
	"sort"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// goStdlib is the fixed Go standard-library top-level import-path
// segment set (§4.2's Go resolver, step 1).
var goStdlib = map[string]bool{
	"bufio": true, "bytes": true, "cmp": true, "compress": true,
	"container": true, "context": true, "crypto": true, "database": true,
	"embed": true, "encoding": true, "errors": true, "expvar": true,
	"flag": true, "fmt": true, "go": true, "hash": true,
	"html": true, "image": true, "index": true, "io": true,
	"log": true, "maps": true, "math": true, "mime": true,
	"net": true, "os": true, "path": true, "plugin": true,
	"reflect": true, "regexp": true, "runtime": true, "slices": true,
	"sort": true, "strconv": true, "strings": true, "sync": true,
	"syscall": true, "testing": true, "text": true, "time": true,
	"unicode": true, "unsafe": true,
}

// GoResolver implements §4.2's Go algorithm.
type GoResolver struct{}

func (r *GoResolver) Language() types.Language { return types.LangGo }

func (r *GoResolver) Resolve(imp types.ParsedImport, fromModuleID string, ctx *ProjectContext) types.Resolution {
	text := imp.Text
	top := firstSegment(text, "/")

	if goStdlib[top] {
		return types.Stdlib(top)
	}

	if ctx.GoModuleName != "" && (text == ctx.GoModuleName || strings.HasPrefix(text, ctx.GoModuleName+"/")) {
		rest := strings.TrimPrefix(text, ctx.GoModuleName)
		rest = strings.TrimPrefix(rest, "/")
		if rest == "" {
			return types.Internal(ctx.GoModuleName)
		}
		pkgPath := strings.ReplaceAll(rest, "/", ".")
		if moduleID, ok := findGoInternalModule(pkgPath, ctx.ProjectModules); ok {
			return types.Internal(moduleID)
		}
		return types.Internal(pkgPath)
	}

	return types.External(top)
}

// findGoInternalModule matches an imported package's dotted directory
// path against the file-level module ids parser.ModuleID actually
// produces (one per file, e.g. "pkg.analysis.types.types" for
// pkg/analysis/types/types.go with no module-name prefix, §4.1's Go
// row): a Go import names a whole package/directory, so the match is a
// prefix match against every file known to live under that package,
// the same reconciliation Python's resolver does against ctx.ProjectModules.
func findGoInternalModule(pkgPath string, projectModules map[string]bool) (string, bool) {
	if projectModules[pkgPath] {
		return pkgPath, true
	}
	prefix := pkgPath + "."
	var matches []string
	for pm := range projectModules {
		if strings.HasPrefix(pm, prefix) {
			matches = append(matches, pm)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}
