package dsp

import "math"

// FilterMode selects the response of a ResonantFilter.
type FilterMode int

const (
	LowPass FilterMode = iota
	HighPass
)

// ResonantFilter is a mono biquad low- or high-pass filter. A connected side
// input drives the cutoff; coefficients are recomputed only when it changes.
type ResonantFilter struct {
	mode   FilterMode
	cutoff float64
	q      float64
	sr     float64

	current        float64
	b0, b1, b2     float64
	a1, a2         float64
	x1, x2, y1, y2 float64
}

// NewResonantFilter constructs a filter at cutoff Hz with resonance q.
func NewResonantFilter(mode FilterMode, cutoff, q float64, ctx Context) *ResonantFilter {
	f := &ResonantFilter{mode: mode, cutoff: cutoff, q: q, sr: ctx.sampleRate()}
	f.design(cutoff)
	return f
}

func (f *ResonantFilter) Mode() FilterMode { return f.mode }
func (f *ResonantFilter) Cutoff() float64 { return f.cutoff }
func (f *ResonantFilter) Q() float64 { return f.q }
func (f *ResonantFilter) Channels() int { return 1 }

// design computes RBJ cookbook coefficients.
func (f *ResonantFilter) design(cutoff float64) {
	nyquist := f.sr / 2
	cutoff = math.Max(1, math.Min(cutoff, nyquist*0.99))
	q := f.q
	if q <= 0 {
		q = 0.707
	}
	w0 := 2 * math.Pi * cutoff / f.sr
	alpha := math.Sin(w0) / (2 * q)
	cosw := math.Cos(w0)
	a0 := 1 + alpha

	switch f.mode {
	case HighPass:
		f.b0 = (1 + cosw) / 2 / a0
		f.b1 = -(1 + cosw) / a0
		f.b2 = (1 + cosw) / 2 / a0
	default:
		f.b0 = (1 - cosw) / 2 / a0
		f.b1 = (1 - cosw) / a0
		f.b2 = (1 - cosw) / 2 / a0
	}
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
	f.current = cutoff
}

func (f *ResonantFilter) Process(main Buffer, sides []Buffer, out Buffer) {
	src := main.channel(0)
	mod := sideOrNil(sides, 0).channel(0)
	dst := out[0]
	for i := range dst {
		if mod != nil && float64(mod[i]) != f.current {
			f.design(float64(mod[i]))
		}
		x := 0.0
		if src != nil {
			x = float64(src[i])
		}
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		dst[i] = float32(y)
	}
}

// OnePole is a one-pole low-pass smoother: y = (1-a)x + a*y[n-1].
type OnePole struct {
	rate float64
	y    float64
}

// NewOnePole constructs a smoother with coefficient rate.
func NewOnePole(rate float64) *OnePole { return &OnePole{rate: rate} }

func (p *OnePole) Rate() float64 { return p.rate }
func (p *OnePole) Channels() int { return 1 }

func (p *OnePole) Process(main Buffer, sides []Buffer, out Buffer) {
	src := main.channel(0)
	mod := sideOrNil(sides, 0).channel(0)
	dst := out[0]
	for i := range dst {
		a := p.rate
		if mod != nil {
			a = float64(mod[i])
		}
		x := 0.0
		if src != nil {
			x = float64(src[i])
		}
		p.y = (1-a)*x + a*p.y
		dst[i] = float32(p.y)
	}
}

// AllPassGain is a Schroeder all-pass section with a delay in milliseconds
// and a feedback gain.
type AllPassGain struct {
	delayMs float64
	gain    float64
	sr      float64
	line    *ringBuffer
}

// maxAllPassMs bounds the all-pass delay line.
const maxAllPassMs = 2000.0

// NewAllPassGain constructs an all-pass section.
func NewAllPassGain(delayMs, gain float64, ctx Context) *AllPassGain {
	sr := ctx.sampleRate()
	return &AllPassGain{
		delayMs: delayMs,
		gain:    gain,
		sr:      sr,
		line:    newRingBuffer(int(maxAllPassMs*sr/1000) + 1),
	}
}

func (a *AllPassGain) DelayMs() float64 { return a.delayMs }
func (a *AllPassGain) Gain() float64 { return a.gain }
func (a *AllPassGain) Channels() int { return 2 }

func (a *AllPassGain) Process(main Buffer, sides []Buffer, out Buffer) {
	src := main.channel(0)
	mod := sideOrNil(sides, 0).channel(0)
	for i := range out[0] {
		ms := a.delayMs
		if mod != nil {
			ms = float64(mod[i])
		}
		d := int(ms * a.sr / 1000)
		x := 0.0
		if src != nil {
			x = float64(src[i])
		}
		delayed := float64(a.line.read(d))
		v := x + a.gain*delayed
		a.line.write(float32(v))
		out[0][i] = float32(delayed - a.gain*v)
	}
	fillMono(out)
}
