package binder

import (
	"github.com/roach88/patchbind/internal/dsp"
	"github.com/roach88/patchbind/internal/param"
)

// rule is the binding rule for one node type. When variadic is set the rule
// takes one or more parameters, each of kind slots[0].
type rule struct {
	slots    []SlotKind
	variadic bool
	build    func(b *binding) (dsp.Node, error)
}

var (
	numberOrRef = []SlotKind{SlotNumberOrReference}
	filterSlots = []SlotKind{SlotNumberOrReference, SlotNumber}
	twoNumbers  = []SlotKind{SlotNumber, SlotNumber}
)

// rules is the single registration point for node types. Indexing by
// NodeType keeps the table the same size as the enum.
var rules = [nodeTypeCount]rule{
	SamplePlayer: {slots: []SlotKind{SlotSampleSymbol}, build: bindSampler},
	MetaMarker: {slots: []SlotKind{SlotSymbol}, build: func(b *binding) (dsp.Node, error) {
		return dsp.NewMeta(b.symbol(0), b.ctx), nil
	}},
	LowPass:  {slots: filterSlots, build: filter(dsp.LowPass)},
	HighPass: {slots: filterSlots, build: filter(dsp.HighPass)},
	BalanceMix: {slots: []SlotKind{SlotReference, SlotReference}, build: func(b *binding) (dsp.Node, error) {
		b.reference(0)
		b.reference(1)
		return dsp.NewBalance(), nil
	}},
	AllPassGain: {slots: filterSlots, build: func(b *binding) (dsp.Node, error) {
		gain := b.number(1)
		return withDefault(b, 0, func(ms float64) *dsp.AllPassGain {
			return dsp.NewAllPassGain(ms, gain, b.ctx)
		}), nil
	}},
	EnvPerc: {slots: twoNumbers, build: func(b *binding) (dsp.Node, error) {
		return dsp.NewEnvPerc(b.number(0), b.number(1), b.ctx), nil
	}},
	SineOsc:     {slots: numberOrRef, build: oscillator(dsp.Sine)},
	SquareOsc:   {slots: numberOrRef, build: oscillator(dsp.Square)},
	SawOsc:      {slots: numberOrRef, build: oscillator(dsp.Sawtooth)},
	TriangleOsc: {slots: numberOrRef, build: oscillator(dsp.Triangle)},
	ImpulseTrain: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, func(f float64) *dsp.Impulse { return dsp.NewImpulse(f, b.ctx) }), nil
	}},
	PlateReverb: {slots: []SlotKind{SlotNumber}, build: func(b *binding) (dsp.Node, error) {
		return dsp.NewPlate(b.number(0), b.ctx), nil
	}},
	MulOp: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, dsp.NewMul), nil
	}},
	AddOp: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, dsp.NewAdd), nil
	}},
	DelayN: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, func(n float64) *dsp.DelayN { return dsp.NewDelayN(dsp.DelaySamples(n)) }), nil
	}},
	DelayMs: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, func(ms float64) *dsp.DelayMs { return dsp.NewDelayMs(ms, b.ctx) }), nil
	}},
	WhiteNoise: {slots: []SlotKind{SlotNumber}, build: func(b *binding) (dsp.Node, error) {
		return dsp.NewNoise(uint64(max(0, b.number(0)))), nil
	}},
	SpeedMarker: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, dsp.NewSpeed), nil
	}},
	OnePole: {slots: numberOrRef, build: func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, dsp.NewOnePole), nil
	}},
	ConstSig: {slots: []SlotKind{SlotNumber}, build: func(b *binding) (dsp.Node, error) {
		return dsp.NewConstSig(b.number(0)), nil
	}},
	KickDrum:      {slots: numberOrRef, build: drum(dsp.Kick)},
	HiHat:         {slots: numberOrRef, build: drum(dsp.HiHat)},
	SnareDrum:     {slots: numberOrRef, build: drum(dsp.Snare)},
	SawSynth:      {slots: twoNumbers, build: synth(dsp.Sawtooth)},
	SquareSynth:   {slots: twoNumbers, build: synth(dsp.Square)},
	TriangleSynth: {slots: twoNumbers, build: synth(dsp.Triangle)},
	Get: {slots: []SlotKind{SlotReference}, build: func(b *binding) (dsp.Node, error) {
		b.reference(0)
		return dsp.NewPass(), nil
	}},
	Seq: {slots: []SlotKind{SlotSequence}, build: bindSequencer},
	Choose: {slots: []SlotKind{SlotNumberList}, build: func(b *binding) (dsp.Node, error) {
		list, _ := b.params[0].(param.NumberList)
		return dsp.NewChoose(list.Values(), b.ctx.Seed), nil
	}},
	Mix: {slots: []SlotKind{SlotReference}, variadic: true, build: func(b *binding) (dsp.Node, error) {
		for i := range b.params {
			b.reference(i)
		}
		return dsp.NewSum(), nil
	}},
}

func filter(mode dsp.FilterMode) func(b *binding) (dsp.Node, error) {
	return func(b *binding) (dsp.Node, error) {
		q := b.number(1)
		return withDefault(b, 0, func(cutoff float64) *dsp.ResonantFilter {
			return dsp.NewResonantFilter(mode, cutoff, q, b.ctx)
		}), nil
	}
}

func oscillator(shape dsp.Waveform) func(b *binding) (dsp.Node, error) {
	return func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, func(f float64) *dsp.Oscillator {
			return dsp.NewOscillator(shape, f, b.ctx)
		}), nil
	}
}

func drum(voice dsp.Drum) func(b *binding) (dsp.Node, error) {
	return func(b *binding) (dsp.Node, error) {
		return withDefault(b, 0, func(decay float64) *dsp.DrumVoice {
			return dsp.NewDrumVoice(voice, decay, b.ctx)
		}), nil
	}
}

func synth(shape dsp.Waveform) func(b *binding) (dsp.Node, error) {
	return func(b *binding) (dsp.Node, error) {
		return dsp.NewSynth(shape, b.number(0), b.number(1), b.ctx), nil
	}
}

func bindSampler(b *binding) (dsp.Node, error) {
	name, _ := b.params[0].(param.SampleSymbol)
	h, ok := b.ctx.Samples.Lookup(string(name))
	if !ok {
		return nil, newNonexistentSample(b.typ, 0, string(name))
	}
	return dsp.NewSampler(b.ctx.Samples, h, b.ctx), nil
}

// Signature describes a node type's parameter slots.
type Signature struct {
	Type       NodeType
	Slots      []SlotKind
	Variadic   bool
	HasDefault bool
	Default    float64
}

// SignatureOf returns the declared slots of t.
func SignatureOf(t NodeType) (Signature, bool) {
	if !t.Valid() {
		return Signature{}, false
	}
	r := rules[t]
	d, ok := Defaults[t]
	return Signature{
		Type:       t,
		Slots:      append([]SlotKind(nil), r.slots...),
		Variadic:   r.variadic,
		HasDefault: ok,
		Default:    d,
	}, true
}
