package dsp

import (
	"math"
	"math/rand/v2"
)

// Waveform selects an oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sin"
	case Square:
		return "squ"
	case Sawtooth:
		return "saw"
	case Triangle:
		return "tri"
	default:
		return "unknown"
	}
}

// Oscillator is a single-channel periodic source. When a frequency side input
// is connected it overrides the constructed frequency sample by sample.
type Oscillator struct {
	shape Waveform
	freq  float64
	sr    float64
	phase float64
}

// NewOscillator constructs an oscillator at freq Hz.
func NewOscillator(shape Waveform, freq float64, ctx Context) *Oscillator {
	return &Oscillator{shape: shape, freq: freq, sr: ctx.sampleRate()}
}

func (o *Oscillator) Shape() Waveform { return o.shape }
func (o *Oscillator) Freq() float64 { return o.freq }
func (o *Oscillator) Channels() int { return 1 }

func (o *Oscillator) Process(_ Buffer, sides []Buffer, out Buffer) {
	mod := sideOrNil(sides, 0).channel(0)
	dst := out[0]
	for i := range dst {
		f := o.freq
		if mod != nil {
			f = float64(mod[i])
		}
		dst[i] = float32(o.sample())
		o.phase += f / o.sr
		o.phase -= math.Floor(o.phase)
	}
	fillMono(out)
}

func (o *Oscillator) sample() float64 {
	switch o.shape {
	case Square:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*o.phase - 1
	case Triangle:
		return 1 - 4*math.Abs(o.phase-0.5)
	default:
		return math.Sin(2 * math.Pi * o.phase)
	}
}

// Impulse emits a single 1.0 sample once per period.
type Impulse struct {
	freq  float64
	sr    float64
	clock float64
}

// NewImpulse constructs an impulse train at freq Hz. A zero frequency is silent.
func NewImpulse(freq float64, ctx Context) *Impulse {
	return &Impulse{freq: freq, sr: ctx.sampleRate(), clock: 1}
}

func (p *Impulse) Freq() float64 { return p.freq }
func (p *Impulse) Channels() int { return 1 }

func (p *Impulse) Process(_ Buffer, sides []Buffer, out Buffer) {
	mod := sideOrNil(sides, 0).channel(0)
	dst := out[0]
	for i := range dst {
		f := p.freq
		if mod != nil {
			f = float64(mod[i])
		}
		dst[i] = 0
		if f <= 0 {
			continue
		}
		if p.clock >= 1 {
			dst[i] = 1
			p.clock -= 1
		}
		p.clock += f / p.sr
	}
}

// ConstSig outputs a constant value.
type ConstSig struct {
	value float32
}

// NewConstSig constructs a constant source.
func NewConstSig(v float64) *ConstSig { return &ConstSig{value: float32(v)} }

func (s *ConstSig) Value() float64 { return float64(s.value) }
func (s *ConstSig) Channels() int { return 1 }

func (s *ConstSig) Process(_ Buffer, _ []Buffer, out Buffer) {
	for _, ch := range out {
		for i := range ch {
			ch[i] = s.value
		}
	}
}

// Noise is white noise from a generator seeded by its parameter, so two
// noise nodes with the same seed produce the same stream.
type Noise struct {
	seed uint64
	rng  *rand.Rand
}

// NewNoise constructs a noise source.
func NewNoise(seed uint64) *Noise {
	return &Noise{seed: seed, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (n *Noise) Seed() uint64 { return n.seed }
func (n *Noise) Channels() int { return 1 }

func (n *Noise) Process(_ Buffer, _ []Buffer, out Buffer) {
	for i := range out[0] {
		out[0][i] = float32(2*n.rng.Float64() - 1)
	}
	fillMono(out)
}
