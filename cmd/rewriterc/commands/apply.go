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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		dryRun  bool
		diff    bool
		verify  bool
		jobs    int
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "apply [roots...]",
		Short: "Rewrite every matching file under the roots",
		Long: `Apply runs every pass of the rule set over each candidate file.
It will:
1. Load and compile the rule set
2. Walk the roots (or the configured roots) for files with a matching extension
3. Apply the passes in order, rule by rule
4. Atomically rewrite the files whose content changed

Per-file failures are reported and never stop the batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.Config(ctx)
			if err != nil {
				return err
			}

			var console *log.Logger
			if !asJSON {
				console = opts.Logger(ctx)
				console.SetVerbose(verbose)
				ctx = log.NewContext(ctx, console)
			}

			// Create operator
			op, err := operation.New(operation.Options{
				Config:      cfg,
				Roots:       args,
				DryRun:      dryRun,
				Diff:        diff,
				Verify:      verify,
				Concurrency: jobs,
			})
			if err != nil {
				return errors.Errorf("creating operator: %w", err)
			}

			if console != nil {
				console.StartRun(ctx, log.RunOperation{
					Roots:  op.Roots(),
					Passes: len(op.RuleSet().Passes()),
					Rules:  len(op.RuleSet().Rules()),
					DryRun: dryRun,
				})
			}

			report, err := op.Apply(ctx)
			if err != nil {
				return errors.Errorf("applying rules: %w", err)
			}

			if asJSON {
				return writeJSON(opts.Stdout, report)
			}

			console.EndRun(ctx)
			if dryRun {
				console.Infof("dry run: %d files left untouched", report.Changed)
			}
			return console.Summary(report)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a unified diff for each changed file")
	cmd.Flags().BoolVar(&verify, "verify", false, "reapply the rules to each rewrite and flag output that would change again")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files processed concurrently (default: config concurrency)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list unchanged files too")

	return cmd
}
