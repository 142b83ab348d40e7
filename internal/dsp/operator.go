package dsp

// Mul multiplies the chain input by a constant or, when connected, by the
// first side input.
type Mul struct {
	factor float32
}

// NewMul constructs a multiplier.
func NewMul(v float64) *Mul { return &Mul{factor: float32(v)} }

func (m *Mul) Factor() float64 { return float64(m.factor) }
func (m *Mul) Channels() int { return 2 }

func (m *Mul) Process(main Buffer, sides []Buffer, out Buffer) {
	mod := sideOrNil(sides, 0)
	for c, ch := range out {
		src := main.channel(c)
		var by []float32
		if mod != nil {
			by = mod.channel(c)
		}
		for i := range ch {
			x := float32(0)
			if src != nil {
				x = src[i]
			}
			if by != nil {
				ch[i] = x * by[i]
			} else {
				ch[i] = x * m.factor
			}
		}
	}
}

// Add offsets the chain input by a constant or by the first side input.
type Add struct {
	offset float32
}

// NewAdd constructs an adder.
func NewAdd(v float64) *Add { return &Add{offset: float32(v)} }

func (a *Add) Offset() float64 { return float64(a.offset) }
func (a *Add) Channels() int { return 2 }

func (a *Add) Process(main Buffer, sides []Buffer, out Buffer) {
	mod := sideOrNil(sides, 0)
	for c, ch := range out {
		src := main.channel(c)
		var by []float32
		if mod != nil {
			by = mod.channel(c)
		}
		for i := range ch {
			x := float32(0)
			if src != nil {
				x = src[i]
			}
			if by != nil {
				ch[i] = x + by[i]
			} else {
				ch[i] = x + a.offset
			}
		}
	}
}

// Pass forwards its single side input unchanged.
type Pass struct{}

// NewPass constructs a pass-through.
func NewPass() *Pass { return &Pass{} }

func (*Pass) Channels() int { return 2 }

func (*Pass) Process(_ Buffer, sides []Buffer, out Buffer) {
	copyMain(sideOrNil(sides, 0), out)
}

// Sum adds every side input into one output. Feeding the same source twice
// doubles its contribution.
type Sum struct{}

// NewSum constructs a summing node.
func NewSum() *Sum { return &Sum{} }

func (*Sum) Channels() int { return 2 }

func (*Sum) Process(_ Buffer, sides []Buffer, out Buffer) {
	zero(out)
	for _, side := range sides {
		for c, ch := range out {
			src := side.channel(c)
			if src == nil {
				continue
			}
			for i := range ch {
				ch[i] += src[i]
			}
		}
	}
}

// Balance averages two side inputs.
type Balance struct{}

// NewBalance constructs a balance node.
func NewBalance() *Balance { return &Balance{} }

func (*Balance) Channels() int { return 2 }

func (*Balance) Process(_ Buffer, sides []Buffer, out Buffer) {
	a, b := sideOrNil(sides, 0), sideOrNil(sides, 1)
	for c, ch := range out {
		x, y := a.channel(c), b.channel(c)
		for i := range ch {
			var s float32
			if x != nil {
				s += x[i]
			}
			if y != nil {
				s += y[i]
			}
			ch[i] = s * 0.5
		}
	}
}

// Meta is a single-channel marker carrying an opaque code annotation for
// external tooling. Audio passes through untouched.
type Meta struct {
	code string
	sr   int
}

// NewMeta constructs a metadata marker.
func NewMeta(code string, ctx Context) *Meta { return &Meta{code: code, sr: ctx.SampleRate} }

func (m *Meta) Code() string { return m.code }
func (m *Meta) SampleRate() int { return m.sr }
func (m *Meta) Channels() int { return 1 }

func (m *Meta) Process(main Buffer, _ []Buffer, out Buffer) {
	copyMain(main, out)
}

// Speed forwards its input and carries a playback-rate factor that
// sequencers downstream read through SpeedFactor.
type Speed struct {
	factor float64
}

// NewSpeed constructs a speed marker.
func NewSpeed(v float64) *Speed { return &Speed{factor: v} }

func (s *Speed) SpeedFactor() float64 { return s.factor }
func (s *Speed) Channels() int { return 2 }

func (s *Speed) Process(main Buffer, _ []Buffer, out Buffer) {
	copyMain(main, out)
}
