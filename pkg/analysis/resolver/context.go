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

// Package resolver implements the six per-language import resolvers of
// §4.2: each maps a ParsedImport plus its importing module to one of
// Internal, External, or Stdlib.
package resolver

import (
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// ProjectContext bundles the immutable, precomputed state resolvers need
// (§9's "bundle into an immutable ProjectContext value... precompute all
// path lookups before parsing begins so parse workers can run in parallel
// without synchronization").
type ProjectContext struct {
	// ProjectModules is the full set of internal module ids known to the
	// driver, keyed by id.
	ProjectModules map[string]bool

	// GoModuleName is the `module` line of go.mod, if present.
	GoModuleName string

	// RustCrateName is the `[package] name` of Cargo.toml, if present.
	RustCrateName string

	// TSConfigBaseURL and TSConfigPaths are compilerOptions.baseUrl/paths
	// from tsconfig.json or jsconfig.json.
	TSConfigBaseURL string
	TSConfigPaths   map[string][]string

	// PackageJSONDeps maps a package name to its declared version, merged
	// from dependencies and devDependencies.
	PackageJSONDeps map[string]string

	// CandidateExists is the "does this file path exist" oracle used by
	// JS/TS relative resolution and the Java filesystem probe (§5: "may
	// be replaced by an injected predicate so the core remains pure").
	// When nil, the Java probe finds no candidate and JS/TS relative
	// imports take the joined path's module id without a check.
	CandidateExists func(path string) bool
}

// NewProjectContext returns a ProjectContext with its maps initialized.
func NewProjectContext() *ProjectContext {
	return &ProjectContext{
		ProjectModules:  make(map[string]bool),
		TSConfigPaths:   make(map[string][]string),
		PackageJSONDeps: make(map[string]string),
	}
}

// Resolver is the capability every per-language import resolver implements.
type Resolver interface {
	Language() types.Language
	Resolve(imp types.ParsedImport, fromModuleID string, ctx *ProjectContext) types.Resolution
}

// Registry maps a language to its resolver.
type Registry struct {
	resolvers map[types.Language]Resolver
}

// NewRegistry builds a registry with all six built-in resolvers registered.
func NewRegistry() *Registry {
	r := &Registry{resolvers: make(map[types.Language]Resolver)}
	r.Register(&PythonResolver{})
	r.Register(&JavaScriptResolver{lang: types.LangJavaScript})
	r.Register(&JavaScriptResolver{lang: types.LangTypeScript})
	r.Register(&GoResolver{})
	r.Register(&JavaResolver{})
	r.Register(&RustResolver{})
	return r
}

func (r *Registry) Register(res Resolver) {
	r.resolvers[res.Language()] = res
}

func (r *Registry) ForLanguage(lang types.Language) (Resolver, bool) {
	res, ok := r.resolvers[lang]
	return res, ok
}

// firstSegment returns the portion of s before the first occurrence of
// sep (used by the "else External with package = first segment" fallback
// shared by several resolvers).
func firstSegment(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}
