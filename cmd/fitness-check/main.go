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

// Package main implements the fitness-check CLI: it evaluates a fitness
// rule config against a dependency graph, either loaded from a
// previously-exported analysis artifact (--graph) or built fresh from
// one or more local source trees (--paths).
//
// Usage:
//
//	fitness-check --rules rules.yaml --graph analysis.json
//	fitness-check --rules rules.yaml --paths ./src ./cmd --fail-on-error
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/kraklabs/charon/internal/bootstrap"
	"github.com/kraklabs/charon/internal/errors"
	"github.com/kraklabs/charon/internal/output"
	"github.com/kraklabs/charon/internal/ui"
	"github.com/kraklabs/charon/pkg/analysis/fitness"
	"github.com/kraklabs/charon/pkg/analysis/types"
	"github.com/kraklabs/charon/pkg/history"
)

func main() {
	var (
		rulesPath   = pflag.String("rules", "", "path to the fitness rule config (JSON or YAML)")
		graphPath   = pflag.String("graph", "", "path to a previously-exported analysis artifact")
		paths       = pflag.StringArray("paths", nil, "one or more local source roots to analyze fresh")
		failOnError = pflag.Bool("fail-on-error", false, "exit 1 if any error-severity violation is found")
		failOnWarn  = pflag.Bool("fail-on-warning", false, "exit 1 if any warning-severity violation is found")
		outputPath  = pflag.String("output", "", "write the fitness result JSON to this path instead of stdout")
		saveHistory = pflag.Bool("save-history", false, "append this run's result to the project's fitness history")
		projectName = pflag.String("project-name", "", "project name for history storage (default: basename of the first --paths root, or \"project\")")
		storagePath = pflag.String("storage-path", "", "history storage directory (default: $FITNESS_STORAGE_PATH or .charon_fitness)")
		quiet       = pflag.Bool("quiet", false, "suppress progress output and colored verdict/violation rendering")
		jsonOutput  = pflag.Bool("json-output", false, "emit the fitness result as JSON instead of colored text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `fitness-check - evaluate fitness rules against a dependency graph

Usage:
  fitness-check --rules <path> (--graph <path> | --paths <dir>...) [options]

Options:
`)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	ui.InitColors(*quiet || *jsonOutput)

	if *rulesPath == "" {
		errors.FatalError(errors.NewBadInputError(
			"missing required flag --rules",
			"no fitness rule config path was given",
			"pass --rules <path> pointing at a JSON or YAML rule config",
			nil,
		), *jsonOutput)
	}
	if (*graphPath == "") == (len(*paths) == 0) {
		errors.FatalError(errors.NewBadInputError(
			"exactly one of --graph or --paths is required",
			"fitness-check needs either a pre-built analysis artifact or source roots to analyze",
			"pass --graph <path> to evaluate an existing artifact, or --paths <dir>... to analyze fresh",
			nil,
		), *jsonOutput)
	}

	cfg, err := fitness.LoadConfig(*rulesPath)
	if err != nil {
		errors.FatalError(errors.NewBadInputError(
			"failed to load fitness rule config",
			err.Error(),
			"check that --rules points at a well-formed JSON or YAML document",
			err,
		), *jsonOutput)
	}

	result, err := loadAnalysisResult(*graphPath, *paths, *projectName, *quiet, *jsonOutput)
	if err != nil {
		errors.FatalError(err, *jsonOutput)
	}

	nodeInfo := make(map[string]*types.NodeMetrics, len(result.Graph.Nodes))
	for id, n := range result.Graph.Nodes {
		m := n.Metrics
		nodeInfo[id] = &m
	}

	fitnessResult := fitness.Evaluate(cfg, fitness.Analysis{
		Graph:    result.Graph,
		Global:   result.GlobalMetrics,
		NodeInfo: nodeInfo,
	}, *failOnError, *failOnWarn)

	if *saveHistory {
		name := resolveProjectName(*projectName, *paths)
		storageDir := *storagePath
		if storageDir == "" {
			storageDir = os.Getenv("FITNESS_STORAGE_PATH")
		}
		if storageDir == "" {
			storageDir = history.DefaultStorageDir
		}
		rec := history.Record{Timestamp: time.Now().UTC().Format(time.RFC3339), ProjectName: name, Result: fitnessResult}
		if err := history.Append(storageDir, name, rec); err != nil {
			errors.FatalError(errors.NewInternalError(
				"failed to append fitness history",
				"history storage write failed",
				err,
			), *jsonOutput)
		}
	}

	if err := renderResult(fitnessResult, *outputPath, *quiet, *jsonOutput); err != nil {
		errors.FatalError(errors.NewInternalError(
			"failed to write fitness result",
			"output encoding or file write failed",
			err,
		), *jsonOutput)
	}

	if fitnessResult.Passed {
		os.Exit(errors.ExitPass)
	}
	os.Exit(errors.ExitFail)
}

// loadAnalysisResult returns the analysis artifact to evaluate, either
// by decoding --graph or by running the full pipeline over --paths.
func loadAnalysisResult(graphPath string, paths []string, projectName string, quiet, jsonOutput bool) (*types.AnalysisResult, error) {
	if graphPath != "" {
		data, err := os.ReadFile(graphPath)
		if err != nil {
			return nil, errors.NewBadInputError(
				"failed to read --graph artifact",
				err.Error(),
				"check that --graph points at a readable analysis artifact file",
				err,
			)
		}
		var result types.AnalysisResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, errors.NewBadInputError(
				"failed to parse --graph artifact",
				err.Error(),
				"the file must be a JSON analysis artifact with graph/global_metrics/warnings fields",
				err,
			)
		}
		return &result, nil
	}

	name := resolveProjectName(projectName, paths)
	p := bootstrap.New(slog.Default())

	enabled := progressEnabled(quiet, jsonOutput)
	bar := newMilestoneBar(enabled)
	result, err := runPipeline(context.Background(), paths, name, p, progressCallback(bar))
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, errors.NewBadInputError(
			"failed to analyze --paths",
			err.Error(),
			"check that the given paths exist and contain files in a supported language",
			err,
		)
	}
	return result, nil
}

func resolveProjectName(explicit string, paths []string) string {
	if explicit != "" {
		return explicit
	}
	if len(paths) > 0 {
		return filepath.Base(filepath.Clean(paths[0]))
	}
	return "project"
}

// renderResult writes the fitness result either as JSON (to outputPath
// or stdout) or as colored text to stdout, gated by quiet/jsonOutput.
func renderResult(res fitness.Result, outputPath string, quiet, jsonOutput bool) error {
	if jsonOutput || outputPath != "" {
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer f.Close()
			return output.JSONTo(f, res)
		}
		return output.JSON(res)
	}

	if quiet {
		return nil
	}

	ui.Header("Fitness Check")
	ui.Verdict(res.Passed, res.Summary)
	fmt.Printf("  %s=%s  %s=%s  %s=%s  %s=%s\n",
		ui.Label("rules"), ui.CountText(res.TotalRules),
		ui.Label("errors"), ui.CountText(res.Errors),
		ui.Label("warnings"), ui.CountText(res.Warnings),
		ui.Label("infos"), ui.CountText(res.Infos))

	for _, v := range res.Violations {
		fmt.Printf("  [%s] %s: %s\n", ui.SeverityText(string(v.Severity)), v.RuleName, v.Message)
		if len(v.AffectedModules) > 0 {
			fmt.Printf("      %s %v\n", ui.DimText("affected:"), v.AffectedModules)
		}
	}
	return nil
}
