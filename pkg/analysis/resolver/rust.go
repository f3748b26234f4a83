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

// rustStdlib is the fixed Rust stdlib/test-harness crate-root set
// (§4.2's Rust resolver, step 2).
var rustStdlib = map[string]bool{
	"std": true, "core": true, "alloc": true, "proc_macro": true, "test": true,
}

// RustResolver implements §4.2's Rust algorithm.
type RustResolver struct{}

func (r *RustResolver) Language() types.Language { return types.LangRust }

// rustCrateRoot is the module id prefix every crate-relative path resolves
// under: Cargo always roots a crate at src/, and parser.ModuleID's
// mod/lib/main stem-collapse means src/main.rs and src/lib.rs both carry
// the id "src" (§3's Rust rule), so "src" is the one fixed anchor a
// crate::-prefixed or own-crate-name path can be rebased onto regardless
// of which file the `use` declaration lives in.
const rustCrateRoot = "src"

func (r *RustResolver) Resolve(imp types.ParsedImport, fromModuleID string, ctx *ProjectContext) types.Resolution {
	text := imp.Text

	if imp.IsRelative {
		// Synthesized from a bodyless `mod name;`: always a sibling module
		// of the declaring file.
		dir := fromModuleID
		if idx := strings.LastIndex(fromModuleID, "::"); idx >= 0 {
			dir = fromModuleID[:idx]
		} else {
			dir = ""
		}
		moduleID := text
		if dir != "" {
			moduleID = dir + "::" + text
		}
		return internalRustResolution(moduleID, ctx)
	}

	top := firstSegment(text, "::")

	switch top {
	case "crate":
		rest := strings.TrimPrefix(text, "crate")
		rest = strings.TrimPrefix(rest, "::")
		if rest == "" {
			return types.Internal(rustCrateRoot)
		}
		return internalRustResolution(rustCrateRoot+"::"+rest, ctx)
	case "self", "super":
		dir := fromModuleID
		if idx := strings.LastIndex(fromModuleID, "::"); idx >= 0 {
			dir = fromModuleID[:idx]
		}
		if top == "super" {
			if idx := strings.LastIndex(dir, "::"); idx >= 0 {
				dir = dir[:idx]
			} else {
				dir = ""
			}
		}
		rest := strings.TrimPrefix(text, top)
		rest = strings.TrimPrefix(rest, "::")
		if rest == "" {
			return internalRustResolution(dir, ctx)
		}
		if dir == "" {
			return internalRustResolution(rest, ctx)
		}
		return internalRustResolution(dir+"::"+rest, ctx)
	}

	if rustStdlib[top] {
		return types.Stdlib(top)
	}

	if ctx.RustCrateName != "" && top == ctx.RustCrateName {
		rest := strings.TrimPrefix(text, ctx.RustCrateName)
		rest = strings.TrimPrefix(rest, "::")
		if rest == "" {
			return types.Internal(rustCrateRoot)
		}
		return internalRustResolution(rustCrateRoot+"::"+rest, ctx)
	}

	return types.External(top)
}

// internalRustResolution reconciles a path-guessed module id against the
// file-level ids parser.ModuleID actually produced for the project: a
// `use` path can name an item (function, struct, const) nested inside a
// module rather than a module itself, so the guess is trimmed one `::`
// segment at a time from the right until it matches a known module,
// falling back to the untrimmed guess for the driver's own backstop to
// degrade if nothing matches.
func internalRustResolution(candidate string, ctx *ProjectContext) types.Resolution {
	if moduleID, ok := findRustInternalModule(candidate, ctx.ProjectModules); ok {
		return types.Internal(moduleID)
	}
	return types.Internal(candidate)
}

func findRustInternalModule(candidate string, projectModules map[string]bool) (string, bool) {
	if projectModules[candidate] {
		return candidate, true
	}
	segments := strings.Split(candidate, "::")
	for i := len(segments) - 1; i > 0; i-- {
		prefix := strings.Join(segments[:i], "::")
		if projectModules[prefix] {
			return prefix, true
		}
	}
	return "", false
}
