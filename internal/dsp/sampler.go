package dsp

import "github.com/roach88/patchbind/internal/samples"

// Sampler plays a sample from the table each time the chain input rises
// above zero. The trigger value is the playback rate (1 = original pitch).
//
// The node holds a handle, not the sample data, and resolves it through the
// table on every block.
type Sampler struct {
	table  *samples.Table
	handle samples.Handle
	sr     int

	pos     float64 // playback position in frames, -1 when idle
	rate    float64
	trigger float32
}

// NewSampler constructs a sampler for handle h of table.
func NewSampler(table *samples.Table, h samples.Handle, ctx Context) *Sampler {
	return &Sampler{table: table, handle: h, sr: ctx.SampleRate, pos: -1}
}

func (s *Sampler) Handle() samples.Handle { return s.handle }
func (s *Sampler) SampleRate() int { return s.sr }
func (s *Sampler) Channels() int { return 2 }

func (s *Sampler) Process(main Buffer, _ []Buffer, out Buffer) {
	view, ok := s.table.View(s.handle)
	src := main.channel(0)
	for i := range out[0] {
		x := float32(0)
		if src != nil {
			x = src[i]
		}
		if x > 0 && s.trigger <= 0 {
			s.pos = 0
			s.rate = float64(x)
		}
		s.trigger = x

		if !ok || s.pos < 0 || int(s.pos) >= view.Frames {
			s.pos = -1
			for c := range out {
				out[c][i] = 0
			}
			continue
		}
		frame := int(s.pos) * view.Channels
		for c := range out {
			out[c][i] = view.Data[frame+min(c, view.Channels-1)]
		}
		s.pos += s.rate
	}
}
