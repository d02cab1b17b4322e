package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		exitCode bool
		diff     bool
		asJSON   bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "status [roots...]",
		Short: "List files the rule set would rewrite",
		Long: `Status runs the batch without writing anything.
It will:
1. Load and compile the rule set
2. Walk the roots and apply every pass in memory
3. Report each file that would change or could not be processed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.Config(ctx)
			if err != nil {
				return err
			}

			// Create operator
			op, err := operation.New(operation.Options{
				Config: cfg,
				Roots:  args,
				Diff:   diff,
			})
			if err != nil {
				return errors.Errorf("creating operator: %w", err)
			}

			// Run status check
			pending, report, err := op.Status(ctx)
			if err != nil {
				return errors.Errorf("checking status: %w", err)
			}

			if asJSON {
				if err := writeJSON(opts.Stdout, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(opts.Stdout, status.WriteText(report, verbose))
			}

			if pending && exitCode {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit 1 when any file would change")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a unified diff for each pending file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list unchanged files too")

	return cmd
}
