package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// evaluate checks one assertion against a result.
func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertCompiles:
		return assertCompiles(r)
	case AssertRejects:
		return assertRejects(r, a)
	case AssertEdge:
		return assertEdge(r, a)
	case AssertRefs:
		return assertRefs(r, a)
	case AssertOutputs:
		return assertOutputs(r, a)
	case AssertWarning:
		return assertWarning(r, a)
	case AssertErrorCount:
		return assertErrorCount(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCompiles(r *Result) error {
	if r.Compiled {
		return nil
	}
	return &AssertionError{
		Type:     AssertCompiles,
		Expected: "patch to compile",
		Actual:   describeFailures(r.Failures),
	}
}

func assertRejects(r *Result, a Assertion) error {
	for _, f := range r.Failures {
		if f.Code != a.Code {
			continue
		}
		if a.Chain != "" && f.Chain != a.Chain {
			continue
		}
		if a.Node != nil && f.Node != *a.Node {
			continue
		}
		return nil
	}

	want := a.Code
	if a.Chain != "" {
		want += " in chain " + a.Chain
	}
	if a.Node != nil {
		want += fmt.Sprintf(" at node %d", *a.Node)
	}
	actual := describeFailures(r.Failures)
	if r.Compiled {
		actual = "patch compiled"
	}
	return &AssertionError{Type: AssertRejects, Expected: want, Actual: actual}
}

func assertEdge(r *Result, a Assertion) error {
	for _, e := range r.Edges {
		if e.From != a.From || e.To != a.To {
			continue
		}
		if a.Node != nil && e.Node != *a.Node {
			continue
		}
		if a.Port != nil && e.Port != *a.Port {
			continue
		}
		return nil
	}

	want := fmt.Sprintf("edge %s -> %s", a.From, a.To)
	if a.Node != nil {
		want += fmt.Sprintf(" node %d", *a.Node)
	}
	if a.Port != nil {
		want += fmt.Sprintf(" port %d", *a.Port)
	}
	edges := make([]string, len(r.Edges))
	for i, e := range r.Edges {
		edges[i] = fmt.Sprintf("%s -> %s node %d port %d", e.From, e.To, e.Node, e.Port)
	}
	return &AssertionError{Type: AssertEdge, Expected: want, Actual: listOrNone(edges)}
}

func assertRefs(r *Result, a Assertion) error {
	for _, c := range r.Chains {
		if c.Name != a.Chain {
			continue
		}
		if *a.Node < 0 || *a.Node >= len(c.Nodes) {
			return &AssertionError{
				Type:     AssertRefs,
				Expected: fmt.Sprintf("node %d in chain %s", *a.Node, a.Chain),
				Actual:   fmt.Sprintf("%d node(s)", len(c.Nodes)),
			}
		}
		got := c.Nodes[*a.Node].Refs
		if slices.Equal(got, a.Refs) {
			return nil
		}
		return &AssertionError{
			Type:     AssertRefs,
			Expected: fmt.Sprintf("refs [%s]", strings.Join(a.Refs, ", ")),
			Actual:   fmt.Sprintf("refs [%s]", strings.Join(got, ", ")),
		}
	}
	return &AssertionError{
		Type:     AssertRefs,
		Expected: "chain " + a.Chain,
		Actual:   "no such chain",
	}
}

func assertOutputs(r *Result, a Assertion) error {
	if slices.Equal(r.Outputs, a.Outputs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputs,
		Expected: fmt.Sprintf("outputs [%s]", strings.Join(a.Outputs, ", ")),
		Actual:   fmt.Sprintf("outputs [%s]", strings.Join(r.Outputs, ", ")),
	}
}

func assertWarning(r *Result, a Assertion) error {
	for _, w := range r.Warnings {
		if strings.Contains(w, a.Contains) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertWarning,
		Expected: fmt.Sprintf("warning containing %q", a.Contains),
		Actual:   listOrNone(r.Warnings),
	}
}

func assertErrorCount(r *Result, a Assertion) error {
	if len(r.Failures) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertErrorCount,
		Expected: fmt.Sprintf("%d error(s)", a.Count),
		Actual:   fmt.Sprintf("%d error(s)", len(r.Failures)),
	}
}

func describeFailures(fs []Failure) string {
	msgs := make([]string, len(fs))
	for i, f := range fs {
		msgs[i] = f.Code + ": " + f.Message
	}
	return listOrNone(msgs)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "; ")
}
