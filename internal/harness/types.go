package harness

import (
	"errors"

	"github.com/roach88/patchbind/internal/patch"
)

// NodeSnapshot is one node of a chain as the scenario saw it.
type NodeSnapshot struct {
	Type string   `json:"type"`
	Refs []string `json:"refs"`
}

// ChainSnapshot is one chain of the patch.
type ChainSnapshot struct {
	Name  string         `json:"name"`
	Aux   bool           `json:"aux"`
	Nodes []NodeSnapshot `json:"nodes"`
}

// Failure is one compile error. Node is -1 for chain-level errors.
type Failure struct {
	Code    string `json:"code"`
	Chain   string `json:"chain"`
	Node    int    `json:"node"`
	Message string `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Compiled reports whether the compiler accepted the patch.
	Compiled bool `json:"compiled"`

	Hash     string          `json:"hash,omitempty"`
	Chains   []ChainSnapshot `json:"chains"`
	Edges    []patch.Edge    `json:"edges"`
	Outputs  []string        `json:"outputs"`
	Warnings []string        `json:"warnings"`

	// Failures holds the compile errors of a rejected patch.
	Failures []Failure `json:"failures"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Chains:   []ChainSnapshot{},
		Edges:    []patch.Edge{},
		Outputs:  []string{},
		Warnings: []string{},
		Failures: []Failure{},
		Errors:   []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) record(res *patch.Result) {
	r.Compiled = true
	r.Hash = res.Hash
	for _, c := range res.Chains {
		snap := ChainSnapshot{Name: c.Name, Aux: c.Aux, Nodes: make([]NodeSnapshot, len(c.Nodes))}
		for i, n := range c.Nodes {
			refs := append([]string{}, n.Refs...)
			snap.Nodes[i] = NodeSnapshot{Type: n.Type.String(), Refs: refs}
		}
		r.Chains = append(r.Chains, snap)
	}
	r.Edges = append(r.Edges, res.Edges...)
	r.Outputs = append(r.Outputs, res.Outputs...)
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, w.Message)
	}
}

// recordRejected snapshots the source patch, since a rejected pass has no
// bound nodes to report.
func (r *Result) recordRejected(p patch.Patch, ce *patch.CompileError) {
	for _, c := range p.Chains {
		snap := ChainSnapshot{Name: c.Name, Aux: c.Aux, Nodes: make([]NodeSnapshot, len(c.Nodes))}
		for i, d := range c.Nodes {
			snap.Nodes[i] = NodeSnapshot{Type: d.Type, Refs: []string{}}
		}
		r.Chains = append(r.Chains, snap)
	}
	for _, err := range ce.Errors {
		r.Failures = append(r.Failures, failureOf(err))
	}
}

func failureOf(err error) Failure {
	f := Failure{Code: patch.ErrorCodeOf(err), Node: -1, Message: err.Error()}
	var ne *patch.NodeError
	var we *patch.WiringError
	switch {
	case errors.As(err, &ne):
		f.Chain, f.Node, f.Message = ne.Chain, ne.Index, ne.Err.Error()
	case errors.As(err, &we):
		f.Chain, f.Node, f.Message = we.Chain, we.Index, we.Message
	}
	return f
}
