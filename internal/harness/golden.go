package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/patchbind/internal/param"
)

// Snapshot captures the topology of a scenario pass for golden comparison.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a Snapshot to the generic tree accepted by
// param.MarshalCanonical. Hash, Pass and assertion errors are left out.
func (s *Snapshot) toCanonicalMap() map[string]any {
	r := s.Result

	chains := make([]any, len(r.Chains))
	for i, c := range r.Chains {
		nodes := make([]any, len(c.Nodes))
		for j, n := range c.Nodes {
			refs := make([]any, len(n.Refs))
			for k, ref := range n.Refs {
				refs[k] = ref
			}
			nodes[j] = map[string]any{"type": n.Type, "refs": refs}
		}
		chains[i] = map[string]any{"name": c.Name, "aux": c.Aux, "nodes": nodes}
	}

	edges := make([]any, len(r.Edges))
	for i, e := range r.Edges {
		edges[i] = map[string]any{"from": e.From, "to": e.To, "node": e.Node, "port": e.Port}
	}

	failures := make([]any, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = map[string]any{"code": f.Code, "chain": f.Chain, "node": f.Node, "message": f.Message}
	}

	return map[string]any{
		"scenario": s.ScenarioName,
		"chains":   chains,
		"edges":    edges,
		"outputs":  stringsToAny(r.Outputs),
		"warnings": stringsToAny(r.Warnings),
		"failures": failures,
	}
}

// MarshalSnapshot returns the canonical JSON snapshot of a scenario result.
func MarshalSnapshot(name string, r *Result) ([]byte, error) {
	s := Snapshot{ScenarioName: name, Result: r}
	return param.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A snapshot mismatch fails t
// through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
