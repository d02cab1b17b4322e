package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the rule set without touching any file",
		Long: `Check loads and compiles the rule set, then looks for rules whose
order matters: a rule that rewrites its own output, a later rule that
matches an earlier rule's output, and a rule shadowed by an earlier one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.Config(ctx)
			if err != nil {
				return err
			}

			rules, err := text.Compile(cfg)
			if err != nil {
				return errors.Errorf("compiling rule set: %w", err)
			}

			console := opts.Logger(ctx)
			console.Infof("checking %s", opts.ConfigPath)
			conflicts := rules.Conflicts()
			for _, c := range conflicts {
				console.Warning(c.String())
			}

			if len(conflicts) > 0 && strict {
				return &ExitError{Code: 1, Message: fmt.Sprintf("❌ rule ordering conflicts: %d", len(conflicts))}
			}

			console.Successf("%s: %d passes, %d rules", opts.ConfigPath, len(rules.Passes()), len(rules.Rules()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit 1 when any ordering conflict is found")

	return cmd
}
