package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbind/internal/loader"
	"github.com/roach88/patchbind/internal/patch"
	"github.com/roach88/patchbind/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Env    EnvOptions
	Output string // report file path

	// IDGenerator allows overriding the pass ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// CompileReport is the JSON form of a successful compile pass.
type CompileReport struct {
	Source   string        `json:"source"`
	Hash     string        `json:"hash"`
	Mode     string        `json:"mode"`
	Chains   []ChainReport `json:"chains"`
	Edges    []patch.Edge  `json:"edges"`
	Outputs  []string      `json:"outputs"`
	Warnings []string      `json:"warnings,omitempty"`
	PassID   string        `json:"pass_id,omitempty"`
}

// ChainReport lists the bound nodes of one chain.
type ChainReport struct {
	Name  string       `json:"name"`
	Aux   bool         `json:"aux,omitempty"`
	Nodes []NodeReport `json:"nodes"`
}

// NodeReport is one bound node and the chains it reads.
type NodeReport struct {
	Type string   `json:"type"`
	Refs []string `json:"refs,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	return newCompileCommand(&CompileOptions{RootOptions: rootOpts})
}

func newCompileCommand(opts *CompileOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <patch>",
		Short: "Bind and wire a patch",
		Long: `Bind every node descriptor of a patch file and wire the chains its
references name.

Binding and wiring errors exit with status 1; unreadable files and bad
configuration exit with status 2. With --db every pass, successful or not,
is recorded in the history database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	addEnvFlags(cmd, &opts.Env)
	cmd.Flags().StringVar(&opts.Env.Mode, "mode", "fail-fast", "error mode (fail-fast|collect-all)")
	cmd.Flags().StringVar(&opts.Env.DB, "db", "", "record the pass in this SQLite database")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the JSON report to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := newSession(opts.RootOptions, &opts.Env, cmd, formatter)
	if err != nil {
		return err
	}

	formatter.VerboseLog("Loading %s", path)
	p, err := loader.Load(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	res, compileErr := sess.compile(p)

	var passID string
	if sess.cfg.DB != "" {
		gen := opts.IDGenerator
		if gen == nil {
			gen = store.UUIDv7Generator{}
		}
		passID, err = recordPass(cmd, sess, gen, path, p, res, compileErr)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, err)
		}
		formatter.VerboseLog("Recorded pass %s", passID)
	}

	if compileErr != nil {
		errs := describeErrors(compileErr)
		if err := formatter.Errors("✗ Compilation failed", errs); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	report := buildReport(path, sess.compiler.Mode(), res)
	report.PassID = passID

	if opts.Output != "" {
		if err := writeReport(report, opts.Output); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	writeCompileText(formatter.Writer, report)
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote report to %s\n", opts.Output)
	}
	return nil
}

// outputLoadError reports a patch file that could not be read or parsed.
func outputLoadError(formatter *OutputFormatter, err error) error {
	e := describeError(err)
	message := e.Message
	if e.Location != "" && formatter.Format != "json" {
		message = e.Location + ": " + message
	}
	_ = formatter.Error(e.Code, message, nil)
	return WrapExitError(ExitCommandError, e.Code, err)
}

// buildReport converts a compile result into its report form.
func buildReport(source string, mode patch.Mode, res *patch.Result) CompileReport {
	report := CompileReport{
		Source:  source,
		Hash:    res.Hash,
		Mode:    mode.String(),
		Chains:  make([]ChainReport, len(res.Chains)),
		Edges:   res.Edges,
		Outputs: res.Outputs,
	}
	if report.Edges == nil {
		report.Edges = []patch.Edge{}
	}
	if report.Outputs == nil {
		report.Outputs = []string{}
	}
	for i, ch := range res.Chains {
		nodes := make([]NodeReport, len(ch.Nodes))
		for j, n := range ch.Nodes {
			nodes[j] = NodeReport{Type: n.Type.String(), Refs: n.Refs}
		}
		report.Chains[i] = ChainReport{Name: ch.Name, Aux: ch.Aux, Nodes: nodes}
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, w.Message)
	}
	return report
}

// writeCompileText renders report for humans.
func writeCompileText(w io.Writer, report CompileReport) {
	nodes := 0
	for _, ch := range report.Chains {
		nodes += len(ch.Nodes)
	}
	fmt.Fprintf(w, "✓ Compiled %d chain(s), %d node(s), %d edge(s)\n", len(report.Chains), nodes, len(report.Edges))
	fmt.Fprintf(w, "Hash: %s\n\n", report.Hash)

	if len(report.Chains) > 0 {
		fmt.Fprintln(w, "Chains:")
		for _, ch := range report.Chains {
			name := ch.Name
			if ch.Aux {
				name = "~" + name
			}
			steps := make([]string, len(ch.Nodes))
			for i, n := range ch.Nodes {
				steps[i] = n.Type
				if len(n.Refs) > 0 {
					steps[i] += " [" + strings.Join(n.Refs, ", ") + "]"
				}
			}
			fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(steps, " → "))
		}
		fmt.Fprintln(w)
	}

	if len(report.Edges) > 0 {
		fmt.Fprintln(w, "Edges:")
		for _, e := range report.Edges {
			fmt.Fprintf(w, "  %s → %s (node %d, port %d)\n", e.From, e.To, e.Node, e.Port)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Outputs: %s\n", strings.Join(report.Outputs, ", "))

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warnings:")
		for _, msg := range report.Warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	if report.PassID != "" {
		fmt.Fprintf(w, "\nRecorded pass %s\n", report.PassID)
	}
}

// writeReport writes report to filename as indented JSON.
func writeReport(report CompileReport, filename string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
