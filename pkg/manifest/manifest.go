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

// Package manifest reads the project-level manifests (go.mod,
// Cargo.toml, package.json, tsconfig.json/jsconfig.json) that seed each
// language's resolver.ProjectContext, plus an optional .gitignore-style
// matcher used by the file provider to skip vendored/ignored paths
// (§5, §6).
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/kraklabs/charon/pkg/analysis/resolver"
	"github.com/kraklabs/charon/pkg/analysis/types"
)

var goModuleLineRe = regexp.MustCompile(`(?m)^module\s+(\S+)`)

// ReadGoModuleName extracts the `module` directive from a go.mod file.
// It returns "" if the file is absent or has no module line; manifests
// are best-effort inputs, never hard failures (§5).
func ReadGoModuleName(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return ""
	}
	m := goModuleLineRe.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}

var cargoPackageNameRe = regexp.MustCompile(`(?m)^\s*name\s*=\s*"([^"]+)"`)

// ReadRustCrateName extracts `[package] name = "..."` from Cargo.toml.
// There is no TOML library anywhere in the example pack, so only the
// one line this resolver needs is scraped with a regex rather than
// parsing the full document.
func ReadRustCrateName(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "Cargo.toml"))
	if err != nil {
		return ""
	}
	inPackageSection := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inPackageSection = trimmed == "[package]"
			continue
		}
		if !inPackageSection {
			continue
		}
		if m := cargoPackageNameRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ReadPackageJSONDeps merges dependencies and devDependencies from
// package.json into a single name->version map (§4.2's JS/TS external
// package metadata).
func ReadPackageJSONDeps(projectRoot string) map[string]string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err != nil {
		return nil
	}
	var pj packageJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil
	}
	deps := make(map[string]string, len(pj.Dependencies)+len(pj.DevDependencies))
	for name, v := range pj.Dependencies {
		deps[name] = v
	}
	for name, v := range pj.DevDependencies {
		deps[name] = v
	}
	return deps
}

type tsConfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// ReadTSConfig reads tsconfig.json, falling back to jsconfig.json, and
// returns the baseUrl/paths path-alias configuration (§4.2).
func ReadTSConfig(projectRoot string) (baseURL string, paths map[string][]string) {
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		data, err := os.ReadFile(filepath.Join(projectRoot, name))
		if err != nil {
			continue
		}
		var cfg tsConfig
		if err := json.Unmarshal(stripJSONComments(data), &cfg); err != nil {
			continue
		}
		return cfg.CompilerOptions.BaseURL, cfg.CompilerOptions.Paths
	}
	return "", nil
}

// stripJSONComments removes // line comments so tsconfig.json's common
// JSONC dialect still unmarshals with encoding/json.
func stripJSONComments(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

// BuildProjectContexts populates one ProjectContext per language that
// needs manifest-derived state, ready for the resolver registry (§4.2).
// existsFn is the file-existence oracle (ProjectContext.CandidateExists)
// shared by every language that probes the filesystem.
func BuildProjectContexts(projectRoot string, existsFn func(string) bool) map[types.Language]*resolver.ProjectContext {
	goCtx := resolver.NewProjectContext()
	goCtx.GoModuleName = ReadGoModuleName(projectRoot)
	goCtx.CandidateExists = existsFn

	rustCtx := resolver.NewProjectContext()
	rustCtx.RustCrateName = ReadRustCrateName(projectRoot)
	rustCtx.CandidateExists = existsFn

	jsCtx := resolver.NewProjectContext()
	jsCtx.PackageJSONDeps = ReadPackageJSONDeps(projectRoot)
	jsCtx.TSConfigBaseURL, jsCtx.TSConfigPaths = ReadTSConfig(projectRoot)
	jsCtx.CandidateExists = existsFn

	javaCtx := resolver.NewProjectContext()
	javaCtx.CandidateExists = existsFn

	pyCtx := resolver.NewProjectContext()
	pyCtx.CandidateExists = existsFn

	return map[types.Language]*resolver.ProjectContext{
		types.LangGo:         goCtx,
		types.LangRust:       rustCtx,
		types.LangJavaScript: jsCtx,
		types.LangTypeScript: jsCtx,
		types.LangJava:       javaCtx,
		types.LangPython:     pyCtx,
	}
}

// IgnoreMatcher wraps a compiled .gitignore-style pattern set.
type IgnoreMatcher struct {
	gi *gitignore.GitIgnore
}

// LoadIgnoreMatcher compiles .gitignore (if present) plus the standard
// vendor/build directories every language in §4.1 excludes by
// convention, so the file provider never hands the driver generated or
// third-party code to parse.
func LoadIgnoreMatcher(projectRoot string) *IgnoreMatcher {
	defaults := []string{
		"node_modules/", ".git/", "vendor/", "dist/", "build/",
		"target/", "__pycache__/", "*.pyc", ".venv/", "venv/",
	}
	path := filepath.Join(projectRoot, ".gitignore")
	if data, err := os.ReadFile(path); err == nil {
		lines := append(defaults, strings.Split(string(data), "\n")...)
		return &IgnoreMatcher{gi: gitignore.CompileIgnoreLines(lines...)}
	}
	return &IgnoreMatcher{gi: gitignore.CompileIgnoreLines(defaults...)}
}

// Ignored reports whether a project-relative path should be excluded.
func (m *IgnoreMatcher) Ignored(relPath string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(relPath)
}
