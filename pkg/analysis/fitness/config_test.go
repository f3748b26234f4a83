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

package fitness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRules = `
version: 1
rules:
  - id: no-cycles
    name: No circular dependencies
    rule_type: no_circular
    severity: error
  - id: coupling-cap
    name: Coupling cap
    rule_type: max_coupling
    parameters:
      max_efferent: 10
`

func TestLoadConfigYAMLDefaultsSeverity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlRules), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, SeverityError, cfg.Rules[0].Severity)
	assert.Equal(t, SeverityWarning, cfg.Rules[1].Severity, "missing severity must default to warning")
	assert.Equal(t, 10, *cfg.Rules[1].Parameters.MaxEfferent)
}

const jsonRules = `{
  "version": 1,
  "rules": [
    {"id": "no-cycles", "name": "No cycles", "rule_type": "no_circular", "severity": "error"}
  ]
}`

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonRules), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, RuleNoCircular, cfg.Rules[0].RuleType)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/rules.yaml")
	assert.Error(t, err)
}
