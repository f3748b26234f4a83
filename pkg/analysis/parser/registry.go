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
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// Registry maintains the language -> parser and extension -> language maps
// of §4.1; file -> parser lookup is O(1) via the extension map.
type Registry struct {
	parsers map[types.Language]LanguageParser
}

// NewRegistry builds a registry with all six built-in language parsers
// registered.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[types.Language]LanguageParser)}
	r.Register(NewPythonParser())
	r.Register(NewJavaScriptParser(types.LangJavaScript))
	r.Register(NewJavaScriptParser(types.LangTypeScript))
	r.Register(NewGoParser())
	r.Register(NewJavaParser())
	r.Register(NewRustParser())
	return r
}

// Register installs (or replaces) the parser for its own Language().
func (r *Registry) Register(p LanguageParser) {
	r.parsers[p.Language()] = p
}

// ParserForLanguage returns the registered parser for a language, if any.
func (r *Registry) ParserForLanguage(lang types.Language) (LanguageParser, bool) {
	p, ok := r.parsers[lang]
	return p, ok
}

// ParserForPath resolves a file's extension to a language and returns its
// parser, or false if the extension is unsupported.
func (r *Registry) ParserForPath(path string) (LanguageParser, bool) {
	lang := types.LanguageForExtension(filepath.Ext(path))
	if lang == types.LangUnknown {
		return nil, false
	}
	return r.ParserForLanguage(lang)
}

// configMarkers maps a project config file to the language(s) its
// presence signals, per §4.1's detect_languages probe.
var configMarkers = map[string][]types.Language{
	"go.mod":           {types.LangGo},
	"Cargo.toml":       {types.LangRust},
	"package.json":     {types.LangJavaScript, types.LangTypeScript},
	"tsconfig.json":    {types.LangTypeScript},
	"pyproject.toml":   {types.LangPython},
	"setup.py":         {types.LangPython},
	"requirements.txt": {types.LangPython},
	"pom.xml":          {types.LangJava},
	"build.gradle":     {types.LangJava},
	"build.gradle.kts": {types.LangJava},
}

// DetectLanguages probes projectRoot for the config files named in §4.1
// and falls back to scanning file extensions when none are found.
func DetectLanguages(projectRoot string) ([]types.Language, error) {
	found := make(map[types.Language]bool)

	for marker, langs := range configMarkers {
		if _, err := os.Stat(filepath.Join(projectRoot, marker)); err == nil {
			for _, l := range langs {
				found[l] = true
			}
		}
	}

	if len(found) == 0 {
		err := filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if lang := types.LanguageForExtension(filepath.Ext(path)); lang != types.LangUnknown {
				found[lang] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var langs []types.Language
	for l := range found {
		langs = append(langs, l)
	}
	sortLanguages(langs)
	return langs, nil
}

func sortLanguages(langs []types.Language) {
	for i := 1; i < len(langs); i++ {
		for j := i; j > 0 && strings.Compare(string(langs[j-1]), string(langs[j])) > 0; j-- {
			langs[j-1], langs[j] = langs[j], langs[j-1]
		}
	}
}
