package patch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/patchbind/internal/binder"
	"github.com/roach88/patchbind/internal/dsp"
)

// Mode selects how a compile pass reacts to errors.
type Mode int

const (
	// FailFast stops at the first error.
	FailFast Mode = iota
	// CollectAll binds every node and reports every error.
	CollectAll
)

func (m Mode) String() string {
	if m == CollectAll {
		return "collect-all"
	}
	return "fail-fast"
}

// ParseMode parses "fail-fast" or "collect-all".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "fail-fast", "":
		return FailFast, nil
	case "collect-all":
		return CollectAll, nil
	default:
		return FailFast, fmt.Errorf("unknown compile mode %q (want fail-fast or collect-all)", s)
	}
}

// Edge wires the output of chain From into input Port of node Node of chain
// To. For seq nodes Port is the selection index from the order map; for mix
// nodes every edge lands on port 0.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Node int    `json:"node"`
	Port int    `json:"port"`
}

// CompiledChain is a chain whose nodes have all been bound.
type CompiledChain struct {
	Name  string
	Aux   bool
	Nodes []*binder.BoundNode
}

// Result is a fully bound and wired patch.
type Result struct {
	Hash     string
	Chains   []CompiledChain
	Edges    []Edge
	Outputs  []string
	Warnings []CycleWarning
}

// NodeCount returns the number of bound nodes.
func (r *Result) NodeCount() int {
	n := 0
	for _, c := range r.Chains {
		n += len(c.Nodes)
	}
	return n
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithMode sets the error mode. Default: FailFast.
func WithMode(m Mode) Option {
	return func(c *Compiler) { c.mode = m }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// WithMetrics records every pass in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Compiler) { c.metrics = m }
}

// Compiler runs compile passes. It holds no per-pass state and may be reused.
type Compiler struct {
	mode    Mode
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{mode: FailFast}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Mode returns the configured error mode.
func (c *Compiler) Mode() Mode { return c.mode }

// Compile binds and wires p. The sample table in env, if any, is frozen
// first; it must be fully populated before the first pass.
//
// On failure the error is a *CompileError and the Result is nil.
func (c *Compiler) Compile(p Patch, env dsp.Context) (*Result, error) {
	start := time.Now()
	if env.Samples != nil {
		env.Samples.Freeze()
	}

	res, errs := c.compile(p, env)
	c.metrics.observe(start, res, errs)
	if len(errs) > 0 {
		c.logger.Debug("compile failed", "errors", len(errs), "mode", c.mode.String())
		return nil, &CompileError{Errors: errs}
	}

	for _, w := range res.Warnings {
		c.logger.Warn("feedback loop", "path", w.Path)
	}
	c.logger.Info("patch compiled",
		"hash", res.Hash,
		"chains", len(res.Chains),
		"nodes", res.NodeCount(),
		"edges", len(res.Edges),
		"duration", time.Since(start),
	)
	return res, nil
}

func (c *Compiler) compile(p Patch, env dsp.Context) (*Result, []error) {
	var errs []error
	// fail records err and reports whether the pass must stop.
	fail := func(err error) bool {
		errs = append(errs, err)
		return c.mode == FailFast
	}

	names := make(map[string]bool, len(p.Chains))
	order := make([]string, 0, len(p.Chains))
	for _, ch := range p.Chains {
		if names[ch.Name] {
			if fail(&WiringError{Code: ErrCodeDuplicateChain, Chain: ch.Name, Index: -1, Name: ch.Name,
				Message: "chain name declared more than once"}) {
				return nil, errs
			}
			continue
		}
		names[ch.Name] = true
		order = append(order, ch.Name)
		if len(ch.Nodes) == 0 {
			if fail(&WiringError{Code: ErrCodeEmptyChain, Chain: ch.Name, Index: -1,
				Message: "chain has no nodes"}) {
				return nil, errs
			}
		}
	}

	res := &Result{Chains: make([]CompiledChain, 0, len(p.Chains))}
	for _, ch := range p.Chains {
		compiled := CompiledChain{Name: ch.Name, Aux: ch.Aux, Nodes: make([]*binder.BoundNode, 0, len(ch.Nodes))}
		for i, d := range ch.Nodes {
			bound, err := binder.BindDescriptor(d, env)
			if err != nil {
				if fail(&NodeError{Chain: ch.Name, Index: i, Type: d.Type, Err: err}) {
					return nil, errs
				}
				continue
			}
			c.logger.Debug("node bound", "chain", ch.Name, "index", i, "type", d.Type, "refs", bound.Refs)

			for slot, ref := range bound.Refs {
				if !names[ref] {
					if fail(&WiringError{Code: ErrCodeUnresolvedReference, Chain: ch.Name, Index: i, Name: ref,
						Message: fmt.Sprintf("reference %q names no chain", ref)}) {
						return nil, errs
					}
					continue
				}
				res.Edges = append(res.Edges, Edge{From: ref, To: ch.Name, Node: i, Port: port(bound, slot, ref)})
			}
			compiled.Nodes = append(compiled.Nodes, bound)
		}
		res.Chains = append(res.Chains, compiled)
		if !ch.Aux {
			res.Outputs = append(res.Outputs, ch.Name)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := p.Hash()
	if err != nil {
		return nil, []error{fmt.Errorf("hashing patch: %w", err)}
	}
	res.Hash = hash
	res.Warnings = AnalyzeCycles(res.Edges, order)
	return res, nil
}

// port maps reference slot to the input port it feeds.
func port(b *binder.BoundNode, slot int, ref string) int {
	switch b.Type {
	case binder.Mix:
		return 0
	case binder.Seq:
		return b.Order[ref]
	default:
		return slot
	}
}
