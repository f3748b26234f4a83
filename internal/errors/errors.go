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

// Package errors provides structured error handling for the fitness-check CLI.
//
// It defines UserError, a type that carries structured error information —
// what went wrong, why, and how to fix it — plus the exit codes the CLI
// contract requires: 0 on a passing verdict, 1 when rules failed per the
// configured gates, 2 on any execution or configuration error.
//
// Only the taxonomy kinds that abort the pipeline (BadInput, Unsupported,
// Cancelled, Internal) are surfaced as UserError. ParseError, ManifestParse,
// and ResolutionDegradation are non-fatal: they are appended to the
// analysis warnings slice and never reach this package.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for the fitness-check CLI, per the External Interfaces contract.
const (
	// ExitPass indicates all fitness rules passed.
	ExitPass = 0

	// ExitFail indicates one or more rules failed under the configured gates.
	ExitFail = 1

	// ExitError indicates an execution or configuration error: bad input,
	// an unsupported project, cancellation, or an internal invariant
	// violation. The analysis was not completed.
	ExitError = 2
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: what went wrong (user-facing error description)
//   - Cause: why it happened (diagnostic information)
//   - Fix: how to fix it (actionable suggestion)
//
// UserError carries an exit code for consistent CLI exit behavior and
// optionally wraps an underlying error for error-chain compatibility.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is/As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewBadInputError reports a malformed rule config, missing required flag,
// or an unrecognized graph/rules source. Exit code 2.
func NewBadInputError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitError, Err: err}
}

// NewUnsupportedError reports that no input files matched the supported
// extension set. Exit code 2 (a BadInput-equivalent, per §7).
func NewUnsupportedError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitError}
}

// NewCancelledError reports cooperative cancellation of a long-running
// pass. No partial output is published. Exit code 2.
func NewCancelledError(msg string) *UserError {
	return &UserError{Message: msg, Cause: "analysis was cancelled before completion", ExitCode: ExitError}
}

// NewInternalError reports any other invariant violation. Exit code 2.
func NewInternalError(msg, cause string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      "this is a bug in the analyzer; please file an issue with the input that triggered it",
		ExitCode: ExitError,
		Err:      err,
	}
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// Color output respects the NO_COLOR environment variable and can be
// explicitly disabled with the noColor parameter. Empty Cause or Fix
// fields are omitted.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format, for --json-output mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{Error: e.Message, Cause: e.Cause, Fix: e.Fix, ExitCode: e.ExitCode}
}

// FatalError prints the error and exits with the appropriate code.
//
// If err is a *UserError it uses Format() or ToJSON() depending on
// jsonOutput. Any other error type prints a simple message and exits
// with ExitError. A nil err returns immediately without printing or
// exiting; for any non-nil err this function does not return.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitError)
}
