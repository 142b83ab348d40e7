package dsp

// EnvPerc is a percussive attack/decay envelope retriggered whenever the
// chain input crosses above zero. Times are in seconds.
type EnvPerc struct {
	attack float64
	decay  float64
	sr     float64

	pos   int // samples since trigger, -1 when idle
	last  float32
	scale float32
}

// NewEnvPerc constructs an envelope.
func NewEnvPerc(attack, decay float64, ctx Context) *EnvPerc {
	return &EnvPerc{attack: attack, decay: decay, sr: ctx.sampleRate(), pos: -1}
}

func (e *EnvPerc) Attack() float64 { return e.attack }
func (e *EnvPerc) Decay() float64 { return e.decay }
func (e *EnvPerc) Channels() int { return 2 }

// level advances the envelope one sample. x is the trigger input.
func (e *EnvPerc) level(x float32) float32 {
	if x > 0 && e.last <= 0 {
		e.pos = 0
		e.scale = x
	}
	e.last = x
	if e.pos < 0 {
		return 0
	}
	atk := int(e.attack * e.sr)
	dec := int(e.decay * e.sr)
	var v float32
	switch {
	case e.pos < atk:
		v = float32(e.pos) / float32(atk)
	case e.pos < atk+dec:
		v = 1 - float32(e.pos-atk)/float32(dec)
	default:
		e.pos = -1
		return 0
	}
	e.pos++
	return v * e.scale
}

func (e *EnvPerc) Process(main Buffer, _ []Buffer, out Buffer) {
	src := main.channel(0)
	for i := range out[0] {
		x := float32(0)
		if src != nil {
			x = src[i]
		}
		out[0][i] = e.level(x)
	}
	fillMono(out)
}
