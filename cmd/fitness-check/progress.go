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
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/charon/pkg/analysis/driver"
)

// progressEnabled reports whether the seven-milestone progress bar
// should render: never under --quiet/--json-output, and never when
// stderr is not a TTY (piped output, CI).
func progressEnabled(quiet, jsonOutput bool) bool {
	return !quiet && !jsonOutput && isatty.IsTerminal(os.Stderr.Fd())
}

// newMilestoneBar builds a determinate bar over the seven canonical
// pipeline milestones (§9/§11.4), styled like the teacher's
// cmd/cie/progress.go.
func newMilestoneBar(enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return nil
	}
	return progressbar.NewOptions(driver.StepComplete,
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// progressCallback adapts a *progressbar.ProgressBar (which may be nil
// when progress is disabled) into a driver.ProgressFunc.
func progressCallback(bar *progressbar.ProgressBar) driver.ProgressFunc {
	return func(step int, label string) {
		if bar == nil {
			return
		}
		bar.Describe(label)
		_ = bar.Set(step)
	}
}
