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

// Package driver implements the Analysis Driver of §4.3: it groups input
// files by language, parses and resolves each one, and assembles a
// DependencyAnalysis. Per-file parsing runs concurrently via an errgroup
// worker pool; the path→module lookup table is primed before any worker
// starts so it can be read without synchronization (§5).
package driver

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/charon/pkg/analysis/parser"
	"github.com/kraklabs/charon/pkg/analysis/resolver"
	"github.com/kraklabs/charon/pkg/analysis/types"
	"github.com/kraklabs/charon/pkg/telemetry"
)

// The seven canonical milestones of §9.
const (
	StepFetch    = 0
	StepParse    = 1
	StepResolve  = 2
	StepBuild    = 3
	StepMetrics  = 4
	StepLayout   = 5
	StepComplete = 6
)

var stepLabels = [...]string{"fetch", "parse", "resolve", "build", "metrics", "layout", "complete"}

// ProgressFunc is invoked at each canonical milestone. The core never
// imports a transport package; a caller wires this to a progress bar, an
// SSE emitter, or a no-op (§9, §11.4).
type ProgressFunc func(step int, label string)

// Driver runs the Analysis Driver pipeline.
type Driver struct {
	parsers   *parser.Registry
	resolvers *resolver.Registry
	logger    *slog.Logger

	// ParseWorkers bounds per-file parse concurrency. Defaults to 4.
	ParseWorkers int
}

// New returns a Driver wired with the default parser and resolver
// registries.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		parsers:      parser.NewRegistry(),
		resolvers:    resolver.NewRegistry(),
		logger:       logger,
		ParseWorkers: 4,
	}
}

// Analyze runs the full driver over the given files for the named
// project, reporting progress at each canonical milestone.
func (d *Driver) Analyze(ctx context.Context, projectName string, files []types.File, ctxByLang map[types.Language]*resolver.ProjectContext, progress ProgressFunc) (*types.DependencyAnalysis, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	progress(StepFetch, stepLabels[StepFetch])

	analysis := types.NewDependencyAnalysis(projectName)
	analysis.TotalFiles = len(files)

	byLang := groupByLanguage(files)

	progress(StepParse, stepLabels[StepParse])

	type fileOutcome struct {
		path string
		pf   *parser.ParsedFile
	}

	var mu sync.Mutex
	for lang, langFiles := range byLang {
		p, ok := d.parsers.ForLanguage(lang)
		if !ok {
			continue
		}
		res, ok := d.resolvers.ForLanguage(lang)
		if !ok {
			continue
		}
		projCtx := ctxByLang[lang]
		if projCtx == nil {
			projCtx = resolver.NewProjectContext()
		}

		// Prime the project module set before any worker starts (§4.3
		// step 2, §5's read-only-during-parsing invariant).
		moduleIDs := make(map[string]string, len(langFiles))
		for _, f := range langFiles {
			id := parser.ModuleID(f.Path, lang)
			moduleIDs[f.Path] = id
			projCtx.ProjectModules[id] = true
		}
		if lang == types.LangJavaScript || lang == types.LangTypeScript {
			registerJSEquivalences(langFiles, projCtx)
		}

		outcomes := make([]fileOutcome, len(langFiles))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.ParseWorkers)
		for i, f := range langFiles {
			i, f := i, f
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				pf, err := p.ParseFile(f.Path, f.Content)
				if err != nil {
					telemetry.RecordParseError()
					mu.Lock()
					analysis.Warnings = append(analysis.Warnings, parser.ParseErrorMessage(f.Path, err))
					mu.Unlock()
					d.logger.Warn("analysis.parse_file.error", "path", f.Path, "err", err)
					return nil
				}
				telemetry.RecordFileParsed(string(lang))
				outcomes[i] = fileOutcome{path: f.Path, pf: pf}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		progress(StepResolve, stepLabels[StepResolve])

		for _, oc := range outcomes {
			if oc.pf == nil {
				continue
			}
			id := moduleIDs[oc.path]
			analysis.Modules[id] = string(mustFindContent(langFiles, oc.path))
			analysis.ModuleMetadata[id] = types.ModuleMetadata{
				Language: lang,
				FilePath: oc.path,
				Service:  parser.DetectService(oc.path),
				Kind:     oc.pf.Kind,
			}
			if analysis.Dependencies[id] == nil {
				analysis.Dependencies[id] = make(map[string]bool)
			}
			if analysis.ThirdPartyByModule[id] == nil {
				analysis.ThirdPartyByModule[id] = make(map[string]bool)
			}
			analysis.Imports[id] = append(analysis.Imports[id], oc.pf.Imports...)
		}

		for _, oc := range outcomes {
			if oc.pf == nil {
				continue
			}
			id := moduleIDs[oc.path]
			for _, imp := range oc.pf.Imports {
				resolution := res.Resolve(imp, id, projCtx)
				recordResolution(analysis, id, imp, resolution)
			}
		}
	}

	progress(StepBuild, stepLabels[StepBuild])
	return analysis, nil
}

func mustFindContent(files []types.File, path string) []byte {
	for _, f := range files {
		if f.Path == path {
			return f.Content
		}
	}
	return nil
}

// recordResolution applies a resolved import to the analysis accumulator,
// degrading an Internal resolution whose target isn't actually a known
// project module to External (§4.2's "Unresolved internals" rule). This
// is the universal backstop every resolver relies on: a resolver only
// needs to produce its language's best-guess internal module id, never
// prove that id is real, because every such guess is checked here
// against the module ids parsing actually produced.
func recordResolution(analysis *types.DependencyAnalysis, fromID string, imp types.ParsedImport, res types.Resolution) {
	switch res.Kind {
	case types.ResolutionStdlib:
		return
	case types.ResolutionInternal:
		target := res.ModuleID
		if target == "" || target == fromID {
			return
		}
		if _, ok := analysis.ModuleMetadata[target]; !ok {
			pkg := firstModuleSegment(target)
			if pkg == "" {
				return
			}
			degraded := types.ThirdPartyNodeID(pkg)
			analysis.ThirdPartyByModule[fromID][pkg] = true
			addDependency(analysis, fromID, degraded, imp)
			telemetry.RecordResolutionDegradation()
			return
		}
		addDependency(analysis, fromID, target, imp)
	case types.ResolutionExternal:
		if res.Package == "" {
			return
		}
		target := types.ThirdPartyNodeID(res.Package)
		analysis.ThirdPartyByModule[fromID][res.Package] = true
		addDependency(analysis, fromID, target, imp)
	}
}

// firstModuleSegment returns the leading path segment of a module id,
// splitting on whichever of "." or "::" occurs first (module ids are
// dot-joined for every language except Rust, which uses "::"), so a
// degraded Internal resolution coalesces to the same third-party package
// a resolver's own External branch would have produced.
func firstModuleSegment(id string) string {
	dot := strings.Index(id, ".")
	dbl := strings.Index(id, "::")
	switch {
	case dot < 0 && dbl < 0:
		return id
	case dot < 0:
		return id[:dbl]
	case dbl < 0:
		return id[:dot]
	case dbl < dot:
		return id[:dbl]
	default:
		return id[:dot]
	}
}

func addDependency(analysis *types.DependencyAnalysis, from, to string, imp types.ParsedImport) {
	analysis.Dependencies[from][to] = true
	key := [2]string{from, to}
	names := imp.Names
	if len(names) == 0 {
		names = []string{imp.Text}
	}
	existing := analysis.ImportDetails[key]
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n] = true
	}
	for _, n := range names {
		if !seen[n] {
			existing = append(existing, n)
			seen[n] = true
		}
	}
	analysis.ImportDetails[key] = existing
}

func groupByLanguage(files []types.File) map[types.Language][]types.File {
	out := make(map[types.Language][]types.File)
	for _, f := range files {
		lang := types.LanguageForExtension(extensionOf(f.Path))
		if lang == types.LangUnknown {
			continue
		}
		out[lang] = append(out[lang], f)
	}
	return out
}

func extensionOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '.' {
			return p[i:]
		}
		if p[i] == '/' {
			break
		}
	}
	return ""
}

// registerJSEquivalences registers index/dir equivalences in the
// candidate-exists oracle so relative resolution works without touching
// the filesystem (§4.3 step 2).
func registerJSEquivalences(files []types.File, ctx *resolver.ProjectContext) {
	existing := make(map[string]bool, len(files))
	for _, f := range files {
		existing["/"+f.Path] = true
	}
	ctx.CandidateExists = func(path string) bool {
		if existing[path] {
			return true
		}
		return existing["/"+trimLeadingSlash(path)]
	}
}

func trimLeadingSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}
