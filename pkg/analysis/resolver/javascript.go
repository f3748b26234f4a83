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
	"path"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// nodeBuiltins is the fixed Node.js builtin-module set (§4.2's JS/TS
// resolver, step 1), grounded on original_source's import_resolver.py.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "cluster": true,
	"console": true, "crypto": true, "dgram": true, "dns": true,
	"domain": true, "events": true, "fs": true, "http": true,
	"http2": true, "https": true, "net": true, "os": true,
	"path": true, "perf_hooks": true, "process": true, "punycode": true,
	"querystring": true, "readline": true, "stream": true, "string_decoder": true,
	"timers": true, "tls": true, "tty": true, "url": true,
	"util": true, "v8": true, "vm": true, "worker_threads": true,
	"zlib": true,
}

// JavaScriptResolver implements §4.2's shared JS/TS algorithm.
type JavaScriptResolver struct {
	lang types.Language
}

func (r *JavaScriptResolver) Language() types.Language { return r.lang }

func (r *JavaScriptResolver) Resolve(imp types.ParsedImport, fromModuleID string, ctx *ProjectContext) types.Resolution {
	text := imp.Text
	if strings.HasPrefix(text, "node:") {
		return types.Stdlib(strings.TrimPrefix(text, "node:"))
	}
	if nodeBuiltins[text] {
		return types.Stdlib(text)
	}

	if strings.HasPrefix(text, ".") {
		if moduleID, ok := resolveJSRelative(fromModuleID, text, ctx); ok {
			return types.Internal(moduleID)
		}
		return types.External(text)
	}

	if moduleID, ok := resolveJSPathAlias(text, ctx); ok {
		return types.Internal(moduleID)
	}

	return externalJSPackage(text, ctx)
}

// resolveJSRelative joins the importing module's directory with the
// relative specifier and probes the candidate-exists oracle for the bare
// path, the path with each JS/TS extension, and an index file inside it
// (§4.2). The joined path's module id is returned whether or not a
// candidate is found; an id that matches no parsed module is degraded
// later by the driver.
func resolveJSRelative(fromModuleID, text string, ctx *ProjectContext) (string, bool) {
	dir := path.Dir(strings.ReplaceAll(fromModuleID, ".", "/"))
	joined := path.Clean(path.Join(dir, text))
	if ctx.CandidateExists == nil {
		return moduleIDFromJSPath(joined), true
	}
	candidates := []string{
		joined, joined + ".js", joined + ".jsx", joined + ".ts", joined + ".tsx",
		joined + "/index.js", joined + "/index.ts", joined + "/index.tsx",
	}
	for _, c := range candidates {
		if ctx.CandidateExists(c) {
			return moduleIDFromJSPath(joined), true
		}
	}
	return moduleIDFromJSPath(joined), true
}

func moduleIDFromJSPath(p string) string {
	p = strings.TrimSuffix(p, "/index")
	return strings.ReplaceAll(strings.TrimPrefix(p, "/"), "/", ".")
}

// resolveJSPathAlias matches tsconfig/jsconfig compilerOptions.paths
// entries (§4.2's "non-relative specifiers are checked against configured
// path aliases before falling back to external package resolution").
func resolveJSPathAlias(text string, ctx *ProjectContext) (string, bool) {
	for pattern, targets := range ctx.TSConfigPaths {
		prefix := strings.TrimSuffix(pattern, "*")
		if !strings.HasSuffix(pattern, "*") {
			if text == pattern && len(targets) > 0 {
				return moduleIDFromJSPath(path.Join(ctx.TSConfigBaseURL, targets[0])), true
			}
			continue
		}
		if strings.HasPrefix(text, prefix) {
			suffix := strings.TrimPrefix(text, prefix)
			if len(targets) == 0 {
				continue
			}
			target := strings.TrimSuffix(targets[0], "*") + suffix
			return moduleIDFromJSPath(path.Join(ctx.TSConfigBaseURL, target)), true
		}
	}
	return "", false
}

func externalJSPackage(text string, ctx *ProjectContext) types.Resolution {
	pkg := text
	if strings.HasPrefix(text, "@") {
		parts := strings.SplitN(text, "/", 3)
		if len(parts) >= 2 {
			pkg = parts[0] + "/" + parts[1]
		}
	} else if idx := strings.Index(text, "/"); idx >= 0 {
		pkg = text[:idx]
	}
	if version, ok := ctx.PackageJSONDeps[pkg]; ok {
		return types.ExternalWithVersion(pkg, version)
	}
	return types.External(pkg)
}
