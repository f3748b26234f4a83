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

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/charon/pkg/analysis/types"
	"github.com/kraklabs/charon/pkg/manifest"
)

// maxFileSize is §6's per-file size cap.
const maxFileSize = 500_000

// collectFiles walks roots and returns every file whose extension is in
// the §3 allow-list, skipping the ignore set and anything over
// maxFileSize. It is the local stand-in for §6's file provider interface
// (hosted-git sources are out of scope; see SPEC_FULL.md §6).
func collectFiles(roots []string) ([]types.File, []string, error) {
	var files []types.File
	var warnings []string

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, nil, err
		}
		ignore := manifest.LoadIgnoreMatcher(abs)

		err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				warnings = append(warnings, "walk error at "+path+": "+err.Error())
				return nil
			}
			rel, relErr := filepath.Rel(abs, path)
			if relErr != nil {
				rel = path
			}
			if d.IsDir() {
				if rel != "." && (strings.HasPrefix(d.Name(), ".") || ignore.Ignored(rel+"/")) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || ignore.Ignored(rel) {
				return nil
			}
			if types.LanguageForExtension(filepath.Ext(path)) == types.LangUnknown {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				warnings = append(warnings, "stat error at "+rel+": "+err.Error())
				return nil
			}
			if info.Size() > maxFileSize {
				warnings = append(warnings, "skipped "+rel+": exceeds size cap")
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				warnings = append(warnings, "read error at "+rel+": "+err.Error())
				return nil
			}
			files = append(files, types.File{Path: filepath.ToSlash(rel), Content: content})
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return files, warnings, nil
}
