package dsp

import (
	"math/rand/v2"

	"github.com/roach88/patchbind/internal/param"
)

// Sequencer loops over a pattern of events. The pattern spans as many whole
// bars as needed to hold its latest event, and at least one. A Number event emits its value
// as a one-sample trigger; a Reference event emits the current sample of the
// side input selected by the order map.
type Sequencer struct {
	events []param.Event
	sr     int
	bpm    float64
	order  map[string]int
	refs   []string

	offsets []int // trigger offset of each event within the pattern, in samples
	slots   []int // side input index per event, -1 for numbers
	barLen  int
	loopLen int
	clock   int
}

// NewSequencer constructs a sequencer. events is copied; order and refs are
// copied so the caller may reuse them.
func NewSequencer(events []param.Event, order map[string]int, refs []string, ctx Context) *Sequencer {
	s := &Sequencer{
		events: append([]param.Event(nil), events...),
		sr:     ctx.SampleRate,
		bpm:    ctx.BPM,
		order:  make(map[string]int, len(order)),
		refs:   append([]string(nil), refs...),
	}
	for k, v := range order {
		s.order[k] = v
	}

	bpm := ctx.BPM
	if bpm <= 0 {
		bpm = 120
	}
	// One bar is four beats.
	s.barLen = max(1, int(4*60/bpm*ctx.sampleRate()))
	bars := 1
	s.offsets = make([]int, len(s.events))
	s.slots = make([]int, len(s.events))
	for i, e := range s.events {
		bars = max(bars, int(e.Time)+1)
		s.offsets[i] = int(e.Time * float64(s.barLen))
		s.slots[i] = -1
		if ref, ok := e.Value.(param.Reference); ok {
			s.slots[i] = s.order[string(ref)]
		}
	}
	s.loopLen = bars * s.barLen
	return s
}

// Events returns a copy of the event list.
func (s *Sequencer) Events() []param.Event { return append([]param.Event(nil), s.events...) }

// Order returns a copy of the reference order map.
func (s *Sequencer) Order() map[string]int {
	m := make(map[string]int, len(s.order))
	for k, v := range s.order {
		m[k] = v
	}
	return m
}

// Refs returns a copy of the reference list.
func (s *Sequencer) Refs() []string { return append([]string(nil), s.refs...) }

func (s *Sequencer) SampleRate() int { return s.sr }
func (s *Sequencer) BPM() float64 { return s.bpm }
func (s *Sequencer) BarLength() int { return s.barLen }

// LoopLength is the pattern length in samples.
func (s *Sequencer) LoopLength() int { return s.loopLen }
func (s *Sequencer) Channels() int { return 2 }

func (s *Sequencer) Process(_ Buffer, sides []Buffer, out Buffer) {
	for i := range out[0] {
		var v float32
		for k, off := range s.offsets {
			if off != s.clock {
				continue
			}
			if slot := s.slots[k]; slot >= 0 {
				if src := sideOrNil(sides, slot).channel(0); src != nil {
					v = src[i]
				}
			} else if n, ok := s.events[k].Value.(param.Number); ok {
				v = float32(n)
			}
		}
		out[0][i] = v
		s.clock++
		if s.clock >= s.loopLen {
			s.clock = 0
		}
	}
	fillMono(out)
}

// Choose holds one value from its list, picking a new one on each rising
// edge of the chain input. Selections come from a PCG generator seeded only
// by the seed passed in, so the same list and seed yield the same sequence.
type Choose struct {
	values []float64
	seed   uint64
	rng    *rand.Rand

	current float64
	last    float32
}

// NewChoose constructs a chooser; values is copied.
func NewChoose(values []float64, seed uint64) *Choose {
	c := &Choose{
		values: append([]float64(nil), values...),
		seed:   seed,
		rng:    rand.New(rand.NewPCG(seed, seed)),
	}
	c.current = c.Next()
	return c
}

func (c *Choose) Values() []float64 { return append([]float64(nil), c.values...) }
func (c *Choose) Seed() uint64 { return c.seed }
func (c *Choose) Channels() int { return 2 }

// Next draws the next selection. An empty list always yields 0.
func (c *Choose) Next() float64 {
	if len(c.values) == 0 {
		return 0
	}
	return c.values[c.rng.IntN(len(c.values))]
}

func (c *Choose) Process(main Buffer, _ []Buffer, out Buffer) {
	src := main.channel(0)
	for i := range out[0] {
		x := float32(0)
		if src != nil {
			x = src[i]
		}
		if x > 0 && c.last <= 0 {
			c.current = c.Next()
		}
		c.last = x
		out[0][i] = float32(c.current)
	}
	fillMono(out)
}
