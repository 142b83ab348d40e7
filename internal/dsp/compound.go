package dsp

import (
	"math"
	"math/rand/v2"
)

// Drum selects a Drum voice.
type Drum int

const (
	Kick Drum = iota
	HiHat
	Snare
)

func (d Drum) String() string {
	switch d {
	case Kick:
		return "bd"
	case HiHat:
		return "hh"
	case Snare:
		return "sn"
	default:
		return "unknown"
	}
}

// DrumVoice is a triggered drum synthesizer. The chain input acts as the
// trigger; decay is in seconds and may be driven by a side input.
type DrumVoice struct {
	voice Drum
	decay float64
	sr    float64

	env   *EnvPerc
	phase float64
	rng   *rand.Rand
}

// NewDrumVoice constructs a drum voice. The noise component is seeded from
// the context so a compile pass stays reproducible.
func NewDrumVoice(voice Drum, decay float64, ctx Context) *DrumVoice {
	return &DrumVoice{
		voice: voice,
		decay: decay,
		sr:    ctx.sampleRate(),
		env:   NewEnvPerc(0.001, decay, ctx),
		rng:   rand.New(rand.NewPCG(ctx.Seed, uint64(voice))),
	}
}

func (d *DrumVoice) Voice() Drum { return d.voice }
func (d *DrumVoice) Decay() float64 { return d.decay }
func (d *DrumVoice) Channels() int { return 2 }

func (d *DrumVoice) Process(main Buffer, sides []Buffer, out Buffer) {
	src := main.channel(0)
	mod := sideOrNil(sides, 0).channel(0)
	for i := range out[0] {
		if mod != nil {
			d.env.decay = float64(mod[i])
		}
		x := float32(0)
		if src != nil {
			x = src[i]
		}
		level := d.env.level(x)
		var s float64
		switch d.voice {
		case Kick:
			f := 50 + 100*float64(level)
			s = math.Sin(2 * math.Pi * d.phase)
			d.phase += f / d.sr
			d.phase -= math.Floor(d.phase)
		case HiHat:
			s = 2*d.rng.Float64() - 1
		default:
			s = 0.5*math.Sin(2*math.Pi*d.phase) + 0.5*(2*d.rng.Float64()-1)
			d.phase += 180 / d.sr
			d.phase -= math.Floor(d.phase)
		}
		out[0][i] = float32(s) * level
	}
	fillMono(out)
}

// Synth is a monophonic note-triggered voice. The chain input carries MIDI
// note numbers; a new note retriggers the envelope.
type Synth struct {
	osc    *Oscillator
	env    *EnvPerc
	attack float64
	decay  float64
	note   float32
}

// NewSynth constructs a synth voice with the given waveform.
func NewSynth(shape Waveform, attack, decay float64, ctx Context) *Synth {
	return &Synth{
		osc:    NewOscillator(shape, 0, ctx),
		env:    NewEnvPerc(attack, decay, ctx),
		attack: attack,
		decay:  decay,
	}
}

func (s *Synth) Shape() Waveform { return s.osc.shape }
func (s *Synth) Attack() float64 { return s.attack }
func (s *Synth) Decay() float64 { return s.decay }
func (s *Synth) Channels() int { return 2 }

func (s *Synth) Process(main Buffer, _ []Buffer, out Buffer) {
	src := main.channel(0)
	for i := range out[0] {
		x := float32(0)
		if src != nil {
			x = src[i]
		}
		if x > 0 {
			s.note = x
			s.osc.freq = MidiToFreq(float64(x))
		}
		level := s.env.level(x)
		v := float32(s.osc.sample())
		s.osc.phase += s.osc.freq / s.osc.sr
		s.osc.phase -= math.Floor(s.osc.phase)
		out[0][i] = v * level
	}
	fillMono(out)
}

// MidiToFreq converts a MIDI note number to Hz (A4 = 69 = 440 Hz).
func MidiToFreq(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}
