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
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// pythonStdlib is the fixed Python standard-library top-level module set
// (§4.2's Python resolver, step 2), grounded on original_source's
// app/utils/import_resolver.py.
var pythonStdlib = map[string]bool{
	"abc": true, "argparse": true, "array": true, "ast": true, "asyncio": true,
	"base64": true, "bisect": true, "builtins": true, "calendar": true,
	"collections": true, "concurrent": true, "contextlib": true, "copy": true,
	"csv": true, "ctypes": true, "dataclasses": true, "datetime": true,
	"decimal": true, "difflib": true, "dis": true, "email": true,
	"enum": true, "errno": true, "fnmatch": true, "functools": true,
	"gc": true, "getpass": true, "glob": true, "hashlib": true,
	"heapq": true, "hmac": true, "html": true, "http": true,
	"importlib": true, "inspect": true, "io": true, "ipaddress": true,
	"itertools": true, "json": true, "logging": true, "math": true,
	"mimetypes": true, "multiprocessing": true, "operator": true,
	"os": true, "pathlib": true, "pickle": true, "platform": true,
	"pprint": true, "queue": true, "random": true, "re": true,
	"sched": true, "secrets": true, "select": true, "shelve": true,
	"shutil": true, "signal": true, "site": true, "socket": true,
	"sqlite3": true, "ssl": true, "stat": true, "statistics": true,
	"string": true, "struct": true, "subprocess": true, "sys": true,
	"tempfile": true, "textwrap": true, "threading": true, "time": true,
	"timeit": true, "traceback": true, "types": true, "typing": true,
	"unicodedata": true, "unittest": true, "urllib": true, "uuid": true,
	"venv": true, "warnings": true, "weakref": true, "xml": true,
	"zipfile": true, "zlib": true, "zoneinfo": true,
}

// PythonResolver implements §4.2's Python algorithm.
type PythonResolver struct{}

func (r *PythonResolver) Language() types.Language { return types.LangPython }

func (r *PythonResolver) Resolve(imp types.ParsedImport, fromModuleID string, ctx *ProjectContext) types.Resolution {
	resolved := imp.Text
	if imp.IsRelative {
		resolved = resolvePythonRelative(fromModuleID, imp.Level, imp.Text)
	}
	if resolved == "" {
		return types.External("")
	}

	top := firstSegment(resolved, ".")
	if pythonStdlib[top] {
		return types.Stdlib(top)
	}

	if moduleID, ok := findPythonInternalModule(resolved, ctx); ok {
		return types.Internal(moduleID)
	}

	if !imp.IsRelative {
		if moduleID, ok := resolvePythonWithContext(fromModuleID, resolved, ctx); ok {
			return types.Internal(moduleID)
		}
	}

	return types.External(top)
}

// resolvePythonRelative strips `level` package segments from the
// importing module id and joins the statement's module text (§4.2 step 1).
func resolvePythonRelative(fromModuleID string, level int, text string) string {
	parts := strings.Split(fromModuleID, ".")
	drop := level
	if drop < 1 {
		drop = 1
	}
	if drop > len(parts) {
		drop = len(parts)
	}
	parts = parts[:len(parts)-drop]
	if text != "" {
		parts = append(parts, strings.Split(text, ".")...)
	}
	return strings.Join(parts, ".")
}

// findPythonInternalModule tries, in order: exact match, parent-of-a-
// project-module match, prefix match (§4.2 step 3).
func findPythonInternalModule(resolved string, ctx *ProjectContext) (string, bool) {
	if ctx.ProjectModules[resolved] {
		return resolved, true
	}
	prefix := resolved + "."
	for pm := range ctx.ProjectModules {
		if strings.HasPrefix(pm, prefix) {
			return resolved, true
		}
	}
	for pm := range ctx.ProjectModules {
		if strings.HasPrefix(resolved, pm+".") {
			return pm, true
		}
	}
	return "", false
}

// resolvePythonWithContext successively prepends the importing module's
// parent packages to an absolute import and retries (§4.2 step 3's
// context-aware fallback).
func resolvePythonWithContext(fromModuleID, resolved string, ctx *ProjectContext) (string, bool) {
	parts := strings.Split(fromModuleID, ".")
	for i := len(parts) - 1; i > 0; i-- {
		candidate := strings.Join(parts[:i], ".") + "." + resolved
		if moduleID, ok := findPythonInternalModule(candidate, ctx); ok {
			return moduleID, true
		}
	}
	return "", false
}
