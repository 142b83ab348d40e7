package dsp

// Plate is a small plate-style reverb: two cross-fed delay lines behind a
// pre-delay, blended with the dry signal by mix (0 dry .. 1 wet).
type Plate struct {
	mix    float64
	left   *ringBuffer
	right  *ringBuffer
	lenL   int
	lenR   int
	fbGain float32
}

// NewPlate constructs a reverb with the given wet mix.
func NewPlate(mix float64, ctx Context) *Plate {
	sr := ctx.sampleRate()
	lenL := int(0.0297 * sr)
	lenR := int(0.0371 * sr)
	return &Plate{
		mix:    mix,
		left:   newRingBuffer(lenL + 1),
		right:  newRingBuffer(lenR + 1),
		lenL:   lenL,
		lenR:   lenR,
		fbGain: 0.7,
	}
}

func (p *Plate) Mix() float64 { return p.mix }
func (p *Plate) Channels() int { return 2 }

func (p *Plate) Process(main Buffer, _ []Buffer, out Buffer) {
	inL, inR := main.channel(0), main.channel(1)
	wet := float32(p.mix)
	dry := 1 - wet
	for i := range out[0] {
		var xl, xr float32
		if inL != nil {
			xl = inL[i]
		}
		if inR != nil {
			xr = inR[i]
		}
		dl := p.left.read(p.lenL)
		dr := p.right.read(p.lenR)
		p.left.write(xl + p.fbGain*dr)
		p.right.write(xr + p.fbGain*dl)
		out[0][i] = dry*xl + wet*dl
		if len(out) > 1 {
			out[1][i] = dry*xr + wet*dr
		}
	}
}
