package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbind/internal/binder"
)

// TypeReport describes the parameter slots of one node type.
type TypeReport struct {
	Name     string   `json:"name"`
	Slots    []string `json:"slots"`
	Variadic bool     `json:"variadic,omitempty"`
	Default  *float64 `json:"default,omitempty"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [type...]",
		Short: "List node types and their parameter slots",
		Long: `List every node type with the kind of each parameter slot.

A number_or_reference slot that receives a reference is built with the
listed default until the referenced chain is wired in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runTypes(opts *RootOptions, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	types := binder.NodeTypes()
	if len(names) > 0 {
		types = types[:0:0]
		for _, name := range names {
			t, ok := binder.ParseNodeType(name)
			if !ok {
				_ = formatter.Error(ErrCodeUnknownNodeType, fmt.Sprintf("unknown node type %q", name), nil)
				return NewExitError(ExitFailure, fmt.Sprintf("unknown node type %q", name))
			}
			types = append(types, t)
		}
	}

	reports := make([]TypeReport, 0, len(types))
	for _, t := range types {
		sig, _ := binder.SignatureOf(t)
		reports = append(reports, typeReport(sig))
	}

	if formatter.Format == "json" {
		return formatter.Success(reports)
	}
	writeTypesText(formatter.Writer, reports)
	return nil
}

func typeReport(sig binder.Signature) TypeReport {
	r := TypeReport{Name: sig.Type.String(), Variadic: sig.Variadic}
	for _, s := range sig.Slots {
		r.Slots = append(r.Slots, s.String())
	}
	if sig.HasDefault {
		d := sig.Default
		r.Default = &d
	}
	return r
}

func writeTypesText(w io.Writer, reports []TypeReport) {
	fmt.Fprintf(w, "Node types (%d):\n", len(reports))
	for _, r := range reports {
		slots := strings.Join(r.Slots, ", ")
		if r.Variadic {
			slots += "..."
		}
		line := fmt.Sprintf("  %-9s %s", r.Name, slots)
		if r.Default != nil {
			line += fmt.Sprintf(" (default %g)", *r.Default)
		}
		fmt.Fprintln(w, line)
	}
}
