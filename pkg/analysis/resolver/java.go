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

	"github.com/kraklabs/charon/pkg/analysis/parser"
	"github.com/kraklabs/charon/pkg/analysis/types"
)

// javaStdlibRoots is the fixed Java/JDK stdlib package-root set (§4.2's
// Java resolver, step 1).
var javaStdlibRoots = map[string]bool{
	"java": true, "javax": true, "sun": true, "com.sun": true,
	"jdk": true, "org.w3c": true, "org.xml": true, "org.ietf": true,
	"org.omg": true,
}

// JavaResolver implements §4.2's Java algorithm.
type JavaResolver struct{}

func (r *JavaResolver) Language() types.Language { return types.LangJava }

func (r *JavaResolver) Resolve(imp types.ParsedImport, fromModuleID string, ctx *ProjectContext) types.Resolution {
	fqcn := imp.Text

	for root := range javaStdlibRoots {
		if fqcn == root || strings.HasPrefix(fqcn, root+".") {
			return types.Stdlib(root)
		}
	}

	if moduleID, ok := probeJavaSourceRoots(fqcn, ctx); ok {
		return types.Internal(moduleID)
	}

	segments := strings.Split(fqcn, ".")
	pkg := fqcn
	if len(segments) >= 2 {
		pkg = segments[0] + "." + segments[1]
	}
	return types.External(pkg)
}

// probeJavaSourceRoots converts a fully-qualified class name to a
// candidate .java path under each of the conventional Maven/Gradle
// source roots, or the project root directly, and asks the
// candidate-exists oracle (§4.2's "existence probed via src/main/java,
// src, or the project root, in that order"). The returned id is derived
// from the winning candidate's full path via parser.ModuleID, matching
// what parsing the file itself would have produced (no src/main/java
// stripping, per §3's Java/Go rule), not the bare fqcn.
func probeJavaSourceRoots(fqcn string, ctx *ProjectContext) (string, bool) {
	if ctx.CandidateExists == nil {
		return "", false
	}
	relPath := strings.ReplaceAll(fqcn, ".", "/") + ".java"
	roots := []string{"src/main/java/", "src/", ""}
	for _, root := range roots {
		candidate := root + relPath
		if ctx.CandidateExists(candidate) {
			return parser.ModuleID(candidate, types.LangJava), true
		}
	}
	return "", false
}
