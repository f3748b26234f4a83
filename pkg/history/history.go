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

// Package history appends fitness-check run records to a flat JSONL
// file per project (§6), grounded on the teacher's embedded-storage
// idiom in pkg/storage but simplified since there is no longer a
// persistent graph database backing it — a fitness run's history is a
// plain append log, not a queryable store.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/charon/pkg/analysis/fitness"
)

// DefaultStorageDir is used when FITNESS_STORAGE_PATH is unset (§6).
const DefaultStorageDir = ".charon_fitness"

// Record is one line of a project's fitness_history.jsonl.
type Record struct {
	Timestamp  string          `json:"timestamp"`
	ProjectName string         `json:"project_name"`
	Result     fitness.Result  `json:"result"`
}

// Append writes one record to <storageDir>/<projectName>/fitness_history.jsonl,
// creating the directory if needed (§6).
func Append(storageDir, projectName string, rec Record) error {
	if storageDir == "" {
		storageDir = DefaultStorageDir
	}
	dir := filepath.Join(storageDir, projectName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	path := filepath.Join(dir, "fitness_history.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write history record: %w", err)
	}
	return nil
}

// Load reads every record from a project's history file, in file order
// (oldest first). A missing file returns an empty slice, not an error.
func Load(storageDir, projectName string) ([]Record, error) {
	if storageDir == "" {
		storageDir = DefaultStorageDir
	}
	path := filepath.Join(storageDir, projectName, "fitness_history.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return records, fmt.Errorf("decode history record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
