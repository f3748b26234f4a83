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

// Package bootstrap wires the fitness-check CLI's analysis pipeline.
//
// bootstrap.New constructs a Pipeline whose Driver already has all six
// language parsers and import resolvers registered, ready to run
// Driver.Analyze over a file set. There is no persistent backend to
// open or initialize: every fitness-check run is a one-shot, in-memory
// analysis over the files and rule config supplied on that invocation.
//
//	p := bootstrap.New(logger)
//	analysis, err := p.Driver.Analyze(ctx, projectName, files, ctxByLang, progress)
package bootstrap
