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

// Package bootstrap wires the parser registry, resolver registry, and
// telemetry once at CLI startup, the way the teacher's bootstrap wired
// the embedded storage backend before every CozoDB-backed command.
package bootstrap

import (
	"log/slog"

	"github.com/kraklabs/charon/pkg/analysis/driver"
)

// Pipeline bundles the stateless components every analysis run shares.
type Pipeline struct {
	Driver *driver.Driver
	Logger *slog.Logger
}

// New constructs a Pipeline with all six language parsers and resolvers
// registered. logger may be nil, in which case slog.Default() is used.
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Driver: driver.New(logger),
		Logger: logger,
	}
}
