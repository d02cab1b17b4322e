// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/config/model"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/status"
	"github.com/walteh/rewriterc/pkg/text"
	"github.com/walteh/rewriterc/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operator defines the main interface for rewriterc operations
type Operator interface {
	// Apply rewrites every candidate file (or only reports, in dry-run mode)
	Apply(ctx context.Context) (*status.Report, error)
	// Status is a dry run reporting whether any file would change
	Status(ctx context.Context) (bool, *status.Report, error)
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Config is the rule set definition
	Config *model.Config
	// Roots, when set, replace the configured roots
	Roots []string
	// Files reads and writes source files; defaults to the local disk
	Files status.FileManager

	DryRun      bool // Report without writing
	Diff        bool // Attach unified diffs to changed records
	Verify      bool // Reapply rules to each rewrite and flag non-idempotent output
	Concurrency int  // Overrides Config.Concurrency when positive
}

// 🎮 Orchestrator runs a compiled rule set over every candidate file
type Orchestrator struct {
	opts  Options
	rules *text.RuleSet
	files status.FileManager
	roots []string
	jobs  int
}

var _ Operator = (*Orchestrator)(nil)

// 🏭 New compiles the rule set and creates an orchestrator. Configuration
// errors are returned here, before any file is touched.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}

	rules, err := text.Compile(opts.Config)
	if err != nil {
		return nil, errors.Errorf("compiling rule set: %w", err)
	}

	files := opts.Files
	if files == nil {
		files = status.New()
	}

	roots := opts.Config.Roots
	if len(opts.Roots) > 0 {
		roots = slices.Clone(opts.Roots)
	}

	jobs := opts.Config.Concurrency
	if opts.Concurrency > 0 {
		jobs = opts.Concurrency
	}

	return &Orchestrator{
		opts:  opts,
		rules: rules,
		files: files,
		roots: roots,
		jobs:  max(jobs, 1),
	}, nil
}

// RuleSet returns the compiled rule set.
func (o *Orchestrator) RuleSet() *text.RuleSet {
	return o.rules
}

// Roots returns the roots the batch walks.
func (o *Orchestrator) Roots() []string {
	return slices.Clone(o.roots)
}

// 🏃 Apply runs the batch. Per-file failures are recorded in the report and
// never abort the run.
func (o *Orchestrator) Apply(ctx context.Context) (*status.Report, error) {
	return o.run(ctx, o.opts.DryRun)
}

func (o *Orchestrator) run(ctx context.Context, dryRun bool) (*status.Report, error) {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)
	tracker := status.NewTracker()

	w := walker.New(walker.Options{
		Roots:      o.roots,
		Extensions: o.rules.Extensions(),
		Exclude:    o.opts.Config.Exclude,
		Ignore:     o.opts.Config.Ignore,
		OnMissingRoot: func(root string) {
			tracker.MissingRoot(root)
			console.Warningf("root %s does not exist, skipping", root)
		},
	})

	logger.Debug().
		Strs("roots", o.roots).
		Int("jobs", o.jobs).
		Bool("dry_run", dryRun).
		Msg("starting batch")

	r := newRunner(o.jobs)
	for c, err := range w.Walk(ctx) {
		if err != nil {
			o.track(ctx, tracker, console, status.ChangeRecord{Path: c.Path, State: status.StateReadFailed, Err: err})
			continue
		}
		r.Go(func() {
			o.track(ctx, tracker, console, o.processFile(ctx, c, dryRun))
		})
	}
	r.Wait()

	interrupted := ctx.Err() != nil
	if interrupted {
		logger.Warn().Err(ctx.Err()).Int("processed", tracker.Len()).Msg("batch interrupted")
	}

	report := tracker.Report(dryRun, interrupted)
	logger.Debug().
		Int("scanned", report.Scanned).
		Int("changed", report.Changed).
		Int("errored", report.Errored).
		Msg("batch finished")

	return report, nil
}

func (o *Orchestrator) track(ctx context.Context, tracker *status.Tracker, console *log.Logger, rec status.ChangeRecord) {
	tracker.Track(ctx, rec)
	console.LogRecord(ctx, rec)
}
