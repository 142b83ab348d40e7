package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbind/internal/patch"
	"github.com/roach88/patchbind/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Hash     string
	ID       string
}

// PassReport is the JSON form of a recorded pass.
type PassReport struct {
	Seq        int64      `json:"seq"`
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	PatchHash  string     `json:"patch_hash"`
	Mode       string     `json:"mode"`
	SampleRate int        `json:"sample_rate"`
	BPM        float64    `json:"bpm"`
	Seed       uint64     `json:"seed"`
	OK         bool       `json:"ok"`
	NodeCount  int        `json:"node_count"`
	EdgeCount  int        `json:"edge_count"`
	Warnings   int        `json:"warnings"`
	Errors     []CLIError `json:"errors,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded compile passes",
		Long: `List the compile passes recorded by "patchbind compile --db".

Passes are shown oldest first. --hash selects every pass of one patch;
--id shows a single pass with its errors.

Example:
  patchbind history --db ./patchbind.db --limit 10
  patchbind history --db ./patchbind.db --id 0192f0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "show at most this many recent passes (0 for all)")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "only passes of the patch with this hash")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show one pass with its errors")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeStoreFailed, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	var passes []store.Pass
	switch {
	case opts.ID != "":
		p, err := st.ReadPass(ctx, opts.ID)
		if errors.Is(err, store.ErrNotFound) {
			return commandError(formatter, ErrCodeNotFound, err)
		}
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, err)
		}
		passes = []store.Pass{p}
	case opts.Hash != "":
		passes, err = st.PassesByHash(ctx, opts.Hash)
	default:
		passes, err = st.ListPasses(ctx, opts.Limit)
	}
	if err != nil {
		return commandError(formatter, ErrCodeStoreFailed, err)
	}

	reports := make([]PassReport, len(passes))
	for i, p := range passes {
		reports[i] = passReport(p)
	}

	if formatter.Format == "json" {
		return formatter.Success(reports)
	}
	writeHistoryText(formatter.Writer, reports)
	return nil
}

func passReport(p store.Pass) PassReport {
	r := PassReport{
		Seq:        p.Seq,
		ID:         p.ID,
		Source:     p.Source,
		PatchHash:  p.PatchHash,
		Mode:       p.Mode,
		SampleRate: p.SampleRate,
		BPM:        p.BPM,
		Seed:       p.Seed,
		OK:         p.OK,
		NodeCount:  p.NodeCount,
		EdgeCount:  p.EdgeCount,
		Warnings:   p.Warnings,
	}
	for _, pe := range p.Errors {
		r.Errors = append(r.Errors, CLIError{Code: pe.Code, Message: pe.Message})
	}
	return r
}

func writeHistoryText(w io.Writer, reports []PassReport) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No passes recorded")
		return
	}
	fmt.Fprintf(w, "Passes (%d):\n", len(reports))
	for _, r := range reports {
		status := "✓"
		if !r.OK {
			status = "✗"
		}
		fmt.Fprintf(w, "  %d %s %s %s: %d node(s), %d edge(s), %d warning(s)\n",
			r.Seq, status, r.ID, r.Source, r.NodeCount, r.EdgeCount, r.Warnings)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "      %s: %s\n", e.Code, e.Message)
		}
	}
}

// recordPass stores the outcome of one compile pass and returns its ID.
func recordPass(cmd *cobra.Command, sess *session, gen store.IDGenerator, source string, p patch.Patch, res *patch.Result, compileErr error) (string, error) {
	st, err := store.Open(sess.cfg.DB)
	if err != nil {
		return "", err
	}
	defer st.Close()

	pass := newPass(gen.Generate(), source, sess, p, res, compileErr)
	if _, err := st.RecordPass(cmd.Context(), pass); err != nil {
		return "", err
	}
	return pass.ID, nil
}

func newPass(id, source string, sess *session, p patch.Patch, res *patch.Result, compileErr error) store.Pass {
	pass := store.Pass{
		ID:         id,
		Source:     source,
		Mode:       sess.compiler.Mode().String(),
		SampleRate: sess.cfg.SampleRate,
		BPM:        sess.cfg.BPM,
		Seed:       sess.cfg.Seed,
		NodeCount:  p.NodeCount(),
	}
	if canonical, err := p.CanonicalJSON(); err == nil {
		pass.Patch = string(canonical)
	}

	if res != nil {
		pass.OK = true
		pass.PatchHash = res.Hash
		pass.EdgeCount = len(res.Edges)
		pass.Warnings = len(res.Warnings)
		return pass
	}

	pass.PatchHash, _ = p.Hash()
	var ce *patch.CompileError
	if errors.As(compileErr, &ce) {
		for _, e := range ce.Errors {
			pass.Errors = append(pass.Errors, store.PassError{Code: patch.ErrorCodeOf(e), Message: e.Error()})
		}
	} else if compileErr != nil {
		pass.Errors = []store.PassError{{Code: patch.ErrorCodeOf(compileErr), Message: compileErr.Error()}}
	}
	return pass
}
