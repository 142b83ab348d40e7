package patch

import (
	"bytes"
	"errors"
	"io"
	"math"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/patchbind/internal/binder"
	"github.com/roach88/patchbind/internal/dsp"
	"github.com/roach88/patchbind/internal/param"
	"github.com/roach88/patchbind/internal/samples"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func d(typ string, params ...param.Value) param.Descriptor {
	return param.NewDescriptor(typ, params...)
}

// demoPatch is a small patch with an lfo feeding a filter cutoff and a
// sequencer selecting between two aux chains.
func demoPatch() Patch {
	return Patch{Chains: []Chain{
		{Name: "lfo", Aux: true, Nodes: []param.Descriptor{d("sin", param.N(0.5)), d("mul", param.N(300)), d("add", param.N(600))}},
		{Name: "kick", Aux: true, Nodes: []param.Descriptor{d("bd", param.N(0.2))}},
		{Name: "hat", Aux: true, Nodes: []param.Descriptor{d("hh", param.N(0.05))}},
		{Name: "drums", Nodes: []param.Descriptor{
			d("seq", param.NewSequence(
				param.At(0, param.Ref("kick")),
				param.At(0.25, param.Ref("hat")),
				param.At(0.5, param.Ref("kick")),
			)),
		}},
		{Name: "lead", Nodes: []param.Descriptor{
			d("saw", param.N(110)),
			d("lpf", param.Ref("lfo"), param.N(1.0)),
			d("mix", param.Ref("drums"), param.Ref("drums")),
		}},
	}}
}

func TestCompileWiresReferences(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	res, err := c.Compile(demoPatch(), dsp.DefaultContext())
	require.NoError(t, err)

	assert.Equal(t, 9, res.NodeCount())
	assert.Equal(t, []string{"drums", "lead"}, res.Outputs)
	assert.Equal(t, []Edge{
		{From: "kick", To: "drums", Node: 0, Port: 0},
		{From: "hat", To: "drums", Node: 0, Port: 1},
		{From: "lfo", To: "lead", Node: 1, Port: 0},
		{From: "drums", To: "lead", Node: 2, Port: 0},
		{From: "drums", To: "lead", Node: 2, Port: 0},
	}, res.Edges)
	assert.Empty(t, res.Warnings)
	assert.Len(t, res.Hash, 64)

	f := res.Chains[4].Nodes[1].Node.(*dsp.ResonantFilter)
	assert.Equal(t, 100.0, f.Cutoff())
}

func TestCompileFailFastStopsAtFirstError(t *testing.T) {
	p := Patch{Chains: []Chain{
		{Name: "a", Nodes: []param.Descriptor{d("wobble"), d("get", param.N(1))}},
	}}
	res, err := New(WithLogger(quietLogger())).Compile(p, dsp.DefaultContext())
	assert.Nil(t, res)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Errors, 1)
	assert.True(t, binder.IsUnknownNodeType(err))

	var ne *NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "a", ne.Chain)
	assert.Equal(t, 0, ne.Index)
	assert.Equal(t, "wobble", ne.Type)
}

func TestCompileCollectAllReportsEveryError(t *testing.T) {
	p := Patch{Chains: []Chain{
		{Name: "a", Nodes: []param.Descriptor{
			d("wobble"),
			d("get", param.N(1)),
			d("sp", param.SampleSymbol("missing")),
			d("lpf", param.N(1)),
			d("mul", param.Ref("nowhere")),
		}},
		{Name: "a", Nodes: []param.Descriptor{d("sin", param.N(1))}},
	}}
	_, err := New(WithMode(CollectAll), WithLogger(quietLogger())).Compile(p, dsp.DefaultContext())

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	codes := make([]string, len(ce.Errors))
	for i, e := range ce.Errors {
		codes[i] = ErrorCodeOf(e)
	}
	assert.Equal(t, []string{
		"DUPLICATE_CHAIN",
		"UNKNOWN_NODE_TYPE",
		"PARAMETER_KIND_MISMATCH",
		"NONEXISTENT_SAMPLE",
		"PARAMETER_ARITY_MISMATCH",
		"UNRESOLVED_REFERENCE",
	}, codes)
	assert.True(t, IsDuplicateChain(err))
	assert.True(t, IsUnresolvedReference(err))
	assert.Contains(t, err.Error(), "compile failed with 6 errors")
}

func TestCompileUnresolvedReference(t *testing.T) {
	p := Patch{Chains: []Chain{{Name: "out", Nodes: []param.Descriptor{d("get", param.Ref("ghost"))}}}}
	_, err := New(WithLogger(quietLogger())).Compile(p, dsp.DefaultContext())
	require.True(t, IsUnresolvedReference(err))

	var we *WiringError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "ghost", we.Name)
	assert.Equal(t, 0, we.Index)
}

func TestCompileRejectsNonFiniteNumber(t *testing.T) {
	p := Patch{Chains: []Chain{{Name: "out", Nodes: []param.Descriptor{
		d("sin", param.N(220)),
		d("constsig", param.N(math.Inf(1))),
	}}}}

	res, err := New(WithLogger(quietLogger())).Compile(p, dsp.DefaultContext())
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, string(binder.ErrCodeKindMismatch), ErrorCodeOf(err))

	var ne *NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "out", ne.Chain)
	assert.Equal(t, 1, ne.Index)
	assert.Equal(t, "constsig", ne.Type)

	var be *binder.BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 0, be.Slot)
	assert.Equal(t, "non-finite number", be.Actual)
}

func TestCompileEmptyChain(t *testing.T) {
	p := Patch{Chains: []Chain{{Name: "silent"}}}
	_, err := New(WithLogger(quietLogger())).Compile(p, dsp.DefaultContext())
	assert.Equal(t, string(ErrCodeEmptyChain), ErrorCodeOf(err))
}

func TestCompileFreezesSampleTable(t *testing.T) {
	tbl := samples.NewTable()
	_, err := tbl.Add("808", []float32{1}, 1)
	require.NoError(t, err)
	env := dsp.DefaultContext()
	env.Samples = tbl

	p := Patch{Chains: []Chain{{Name: "o", Nodes: []param.Descriptor{d("sp", param.SampleSymbol("808"))}}}}
	_, err = New(WithLogger(quietLogger())).Compile(p, env)
	require.NoError(t, err)
	assert.True(t, tbl.Frozen())

	_, err = tbl.Add("909", []float32{1}, 1)
	assert.ErrorIs(t, err, samples.ErrFrozen)
}

func TestCompileFeedbackWarns(t *testing.T) {
	p := Patch{Chains: []Chain{
		{Name: "a", Nodes: []param.Descriptor{d("get", param.Ref("b"))}},
		{Name: "b", Nodes: []param.Descriptor{d("delayms", param.N(250)), d("add", param.Ref("a"))}},
		{Name: "c", Nodes: []param.Descriptor{d("sin", param.N(1)), d("mul", param.Ref("c"))}},
	}}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	res, err := New(WithLogger(logger)).Compile(p, dsp.DefaultContext())
	require.NoError(t, err)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, []string{"a", "b", "a"}, res.Warnings[0].Path)
	assert.Equal(t, "feedback loop: a <- b <- a", res.Warnings[0].Message)
	assert.Equal(t, []string{"c", "c"}, res.Warnings[1].Path)
	assert.Contains(t, logs.String(), "feedback loop")
}

func TestHashDeterministic(t *testing.T) {
	h1, err := demoPatch().Hash()
	require.NoError(t, err)
	h2, err := demoPatch().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := demoPatch()
	changed.Chains[0].Nodes[0] = d("sin", param.N(0.25))
	h3, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestCompileMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(WithLogger(quietLogger()), WithMetrics(m), WithMode(CollectAll))

	_, err := c.Compile(demoPatch(), dsp.DefaultContext())
	require.NoError(t, err)
	_, err = c.Compile(Patch{Chains: []Chain{{Name: "x", Nodes: []param.Descriptor{d("nope")}}}}, dsp.DefaultContext())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.compiles.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compiles.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("UNKNOWN_NODE_TYPE")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.nodes))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("collect-all")
	require.NoError(t, err)
	assert.Equal(t, CollectAll, m)
	assert.Equal(t, "collect-all", m.String())

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, FailFast, m)

	_, err = ParseMode("yolo")
	assert.Error(t, err)
}
