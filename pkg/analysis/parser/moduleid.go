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
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
)

// NormalizePath POSIX-normalizes a path and strips a leading slash, per §3.
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(p, "/")
}

// ModuleID derives the dotted module identifier for a file, per §3's
// per-language rules.
func ModuleID(path string, lang types.Language) string {
	p := NormalizePath(path)
	switch lang {
	case types.LangPython:
		p = strings.TrimSuffix(p, ".py")
		parts := strings.Split(p, "/")
		if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
			parts = parts[:len(parts)-1]
		}
		return strings.Join(parts, ".")

	case types.LangJavaScript, types.LangTypeScript:
		p = stripJSExtension(p)
		parts := strings.Split(p, "/")
		if len(parts) > 0 && parts[len(parts)-1] == "index" {
			parts = parts[:len(parts)-1]
		}
		return strings.Join(parts, ".")

	case types.LangGo, types.LangJava:
		ext := extensionOf(p)
		p = strings.TrimSuffix(p, ext)
		return strings.ReplaceAll(p, "/", ".")

	case types.LangRust:
		p = strings.TrimSuffix(p, ".rs")
		parts := strings.Split(p, "/")
		if len(parts) > 0 {
			last := parts[len(parts)-1]
			if last == "mod" || last == "lib" || last == "main" {
				parts = parts[:len(parts)-1]
			}
		}
		return strings.Join(parts, "::")
	}
	return p
}

func extensionOf(p string) string {
	if i := strings.LastIndex(p, "."); i >= 0 {
		return p[i:]
	}
	return ""
}

var jsExtensions = []string{".tsx", ".ts", ".jsx", ".mjs", ".cjs", ".js"}

func stripJSExtension(p string) string {
	for _, ext := range jsExtensions {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

// serviceTopLevel and serviceContainer back DetectService (§3).
var serviceTopLevel = map[string]bool{
	"frontend": true, "backend": true, "api": true, "web": true, "mobile": true,
	"server": true, "client": true, "admin": true, "dashboard": true,
	"core": true, "common": true, "shared": true,
}

var serviceContainer = map[string]bool{
	"packages": true, "libs": true, "apps": true, "services": true,
	"modules": true, "projects": true,
}

// DetectService applies §3's service-detection heuristic to a normalized path.
func DetectService(path string) string {
	parts := strings.Split(NormalizePath(path), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}

	if serviceTopLevel[parts[0]] {
		return parts[0]
	}
	if serviceContainer[parts[0]] && len(parts) >= 2 {
		return parts[1]
	}
	if parts[0] == "src" && len(parts) >= 2 {
		if serviceTopLevel[parts[1]] || serviceContainer[parts[1]] {
			return parts[1]
		}
		return "main"
	}
	if len(parts) >= 2 {
		return parts[0]
	}
	return ""
}
