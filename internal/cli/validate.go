package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbind/internal/loader"
	"github.com/roach88/patchbind/internal/patch"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Env EnvOptions
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Chains   int      `json:"chains"`
	Nodes    int      `json:"nodes"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <patch>",
		Short: "Report every binding and wiring error in a patch",
		Long: `Validate a patch without recording anything.

Unlike compile, validate always runs in collect-all mode: every node is
bound and every reference resolved, and all failures are reported together.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	addEnvFlags(cmd, &opts.Env)

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := newSession(opts.RootOptions, &opts.Env, cmd, formatter, patch.WithMode(patch.CollectAll))
	if err != nil {
		return err
	}

	p, err := loader.Load(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Validating %d chain(s), %d node(s)", len(p.Chains), p.NodeCount())

	res, err := sess.compile(p)
	if err != nil {
		errs := describeErrors(err)
		if err := formatter.Errors("✗ Validation failed", errs); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	result := ValidationResult{Valid: true, Chains: len(res.Chains), Nodes: res.NodeCount()}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, w.Message)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Patch valid: %d chain(s), %d node(s)\n", result.Chains, result.Nodes)
	for _, msg := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", msg)
	}
	return nil
}
