package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/patchbind/internal/param"
	"github.com/roach88/patchbind/internal/samples"
)

func TestNodesSatisfyInterface(t *testing.T) {
	ctx := DefaultContext()
	var _ Node = NewOscillator(Sine, 440, ctx)
	var _ Node = NewImpulse(1, ctx)
	var _ Node = NewConstSig(1)
	var _ Node = NewNoise(1)
	var _ Node = NewMul(1)
	var _ Node = NewAdd(1)
	var _ Node = NewPass()
	var _ Node = NewSum()
	var _ Node = NewBalance()
	var _ Node = NewMeta("", ctx)
	var _ Node = NewSpeed(1)
	var _ Node = NewResonantFilter(LowPass, 100, 1, ctx)
	var _ Node = NewOnePole(0.5)
	var _ Node = NewAllPassGain(10, 0.5, ctx)
	var _ Node = NewDelayN(10)
	var _ Node = NewDelayMs(10, ctx)
	var _ Node = NewEnvPerc(0.01, 0.1, ctx)
	var _ Node = NewPlate(0.1, ctx)
	var _ Node = NewDrumVoice(Kick, 0.3, ctx)
	var _ Node = NewSynth(Sawtooth, 0.01, 0.1, ctx)
	var _ Node = NewSampler(samples.NewTable(), 1, ctx)
	var _ Node = NewSequencer(nil, nil, nil, ctx)
	var _ Node = NewChoose([]float64{1}, 1)
}

func TestConstSigFillsEveryChannel(t *testing.T) {
	out := NewBuffer(2, 8)
	NewConstSig(0.25).Process(nil, nil, out)
	for _, ch := range out {
		for _, v := range ch {
			assert.Equal(t, float32(0.25), v)
		}
	}
}

func TestMulUsesSideInputWhenConnected(t *testing.T) {
	main := Buffer{{1, 2, 3}, {1, 2, 3}}
	side := Buffer{{2, 2, 2}}
	out := NewBuffer(2, 3)

	NewMul(0).Process(main, []Buffer{side}, out)
	assert.Equal(t, []float32{2, 4, 6}, out[0])
	assert.Equal(t, []float32{2, 4, 6}, out[1], "mono side input broadcasts")

	NewMul(0.5).Process(main, nil, out)
	assert.Equal(t, []float32{0.5, 1, 1.5}, out[0])
}

func TestSumDoublesRepeatedSource(t *testing.T) {
	a := Buffer{{1, 1}, {1, 1}}
	out := NewBuffer(2, 2)
	NewSum().Process(nil, []Buffer{a, a}, out)
	assert.Equal(t, []float32{2, 2}, out[0])
}

func TestPassForwardsSide(t *testing.T) {
	a := Buffer{{0.1, 0.2}, {0.3, 0.4}}
	out := NewBuffer(2, 2)
	NewPass().Process(nil, []Buffer{a}, out)
	assert.Equal(t, a, out)
}

func TestDelayNDelaysBySamples(t *testing.T) {
	d := NewDelayN(2)
	main := Buffer{{1, 0, 0, 0}, {1, 0, 0, 0}}
	out := NewBuffer(2, 4)
	d.Process(main, nil, out)
	assert.Equal(t, []float32{0, 0, 1, 0}, out[0])
}

func TestDelaySamplesClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{"zero", 0, 0},
		{"whole", 64, 64},
		{"truncates", 3.9, 3},
		{"negative", -1, 0},
		{"nan", math.NaN(), 0},
		{"huge", 1e15, maxDelaySamples},
		{"inf", math.Inf(1), maxDelaySamples},
		{"-inf", math.Inf(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DelaySamples(tt.in))
		})
	}
}

func TestNewDelayNClampsToMax(t *testing.T) {
	assert.Equal(t, maxDelaySamples, NewDelayN(maxDelaySamples*4).Samples())
	assert.Equal(t, 0, NewDelayN(-5).Samples())
}

func TestImpulseZeroFrequencyIsSilent(t *testing.T) {
	out := NewBuffer(1, 16)
	NewImpulse(0, DefaultContext()).Process(nil, nil, out)
	for _, v := range out[0] {
		assert.Zero(t, v)
	}
}

func TestChooseDeterministicForSeed(t *testing.T) {
	list := []float64{1, 2, 3}
	draw := func(seed uint64) []float64 {
		c := NewChoose(list, seed)
		seq := make([]float64, 32)
		for i := range seq {
			seq[i] = c.Next()
		}
		return seq
	}

	assert.Equal(t, draw(7), draw(7))
	assert.NotEqual(t, draw(7), draw(8))
	for _, v := range draw(7) {
		assert.Contains(t, list, v)
	}
}

func TestChooseEmptyListYieldsZero(t *testing.T) {
	c := NewChoose(nil, 1)
	assert.Zero(t, c.Next())
}

func TestChooseCopiesValues(t *testing.T) {
	list := []float64{1, 2}
	c := NewChoose(list, 1)
	list[0] = 99
	assert.Equal(t, []float64{1, 2}, c.Values())
}

func TestSequencerTriggers(t *testing.T) {
	ctx := Context{SampleRate: 8, BPM: 60} // bar = 4 beats = 4 s = 32 samples
	events := []param.Event{param.At(0, param.N(60)), param.At(0.5, param.Ref("a"))}
	s := NewSequencer(events, map[string]int{"a": 0}, []string{"a"}, ctx)
	require.Equal(t, 32, s.BarLength())
	require.Equal(t, 32, s.LoopLength())

	side := NewBuffer(1, 32)
	for i := range side[0] {
		side[0][i] = 7
	}
	out := NewBuffer(2, 32)
	s.Process(nil, []Buffer{side}, out)

	assert.Equal(t, float32(60), out[0][0])
	assert.Equal(t, float32(7), out[0][16])
	assert.Zero(t, out[0][1])
	assert.Equal(t, out[0], out[1])
}

func TestSequencerLoopCoversLatestEvent(t *testing.T) {
	ctx := Context{SampleRate: 8, BPM: 60}
	events := []param.Event{param.At(0, param.N(1)), param.At(2, param.N(2))}
	s := NewSequencer(events, nil, nil, ctx)
	assert.Equal(t, 96, s.LoopLength())

	out := NewBuffer(1, 96)
	s.Process(nil, nil, out)
	assert.Equal(t, float32(1), out[0][0])
	assert.Equal(t, float32(2), out[0][64])
}

func TestSequencerCopiesInputs(t *testing.T) {
	events := []param.Event{param.At(0, param.Ref("a"))}
	order := map[string]int{"a": 0}
	refs := []string{"a"}
	s := NewSequencer(events, order, refs, DefaultContext())

	events[0] = param.At(0.5, param.N(1))
	order["a"] = 5
	refs[0] = "z"

	assert.Equal(t, param.Ref("a"), s.Events()[0].Value)
	assert.Equal(t, map[string]int{"a": 0}, s.Order())
	assert.Equal(t, []string{"a"}, s.Refs())
}

func TestSamplerPlaysOnTrigger(t *testing.T) {
	tbl := samples.NewTable()
	h, err := tbl.Add("blip", []float32{0.5, 0.25, 0.125}, 1)
	require.NoError(t, err)

	s := NewSampler(tbl, h, DefaultContext())
	main := Buffer{{1, 0, 0, 0, 0}}
	out := NewBuffer(2, 5)
	s.Process(main, nil, out)

	assert.Equal(t, []float32{0.5, 0.25, 0.125, 0, 0}, out[0])
	assert.Equal(t, out[0], out[1])
}

func TestResonantFilterKeepsConstructedCutoff(t *testing.T) {
	f := NewResonantFilter(HighPass, 100, 1, DefaultContext())
	assert.Equal(t, 100.0, f.Cutoff())
	assert.Equal(t, HighPass, f.Mode())

	out := NewBuffer(1, MaxFrames)
	main := NewBuffer(1, MaxFrames)
	f.Process(main, nil, out)
	for _, v := range out[0] {
		assert.Zero(t, v, "silence in, silence out")
	}
}

func TestMidiToFreq(t *testing.T) {
	assert.InDelta(t, 440.0, MidiToFreq(69), 1e-9)
	assert.InDelta(t, 261.6256, MidiToFreq(60), 1e-3)
}
