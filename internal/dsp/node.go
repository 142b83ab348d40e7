// Package dsp is the node capability layer the binder constructs into.
//
// Every node type has one constructor taking its bound, typed parameters and
// the shared Context. Constructed nodes expose those parameters through
// accessors so a node's initial state can be inspected before any audio runs.
//
// Processing is deliberately plain: buffers are sized at construction and the
// steady-state Process path does not allocate.
package dsp

import (
	"github.com/roach88/patchbind/internal/samples"
)

// MaxFrames is the largest block a node is prepared to process at once.
const MaxFrames = 128

// Buffer is a block of audio, indexed [channel][frame].
type Buffer [][]float32

// NewBuffer allocates a zeroed buffer.
func NewBuffer(channels, frames int) Buffer {
	b := make(Buffer, channels)
	for c := range b {
		b[c] = make([]float32, frames)
	}
	return b
}

// Frames returns the number of frames in the buffer.
func (b Buffer) Frames() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// channel returns channel c of b, falling back to the last channel so that a
// mono input can feed a stereo node. Returns nil for an empty buffer.
func (b Buffer) channel(c int) []float32 {
	if len(b) == 0 {
		return nil
	}
	if c >= len(b) {
		c = len(b) - 1
	}
	return b[c]
}

// Node processes N-channel audio.
//
// main is the signal arriving from the previous node in the chain (empty for
// sources). sides[i] carries the output of reference i of the node's
// reference list. out has Channels() channels and determines the block size.
type Node interface {
	Channels() int
	Process(main Buffer, sides []Buffer, out Buffer)
}

// Context is the environment shared by every node built in one compile pass.
type Context struct {
	SampleRate int
	BPM        float64
	Seed       uint64
	Samples    *samples.Table
}

// DefaultContext returns a 44.1 kHz, 120 BPM context with seed 42 and no samples.
func DefaultContext() Context {
	return Context{SampleRate: 44100, BPM: 120, Seed: 42}
}

// sampleRate returns the context sample rate as float64, guarding against zero.
func (c Context) sampleRate() float64 {
	if c.SampleRate <= 0 {
		return 44100
	}
	return float64(c.SampleRate)
}

func zero(out Buffer) {
	for _, ch := range out {
		for i := range ch {
			ch[i] = 0
		}
	}
}

// copyMain copies main into out channel by channel, zero-filling if main is empty.
func copyMain(main Buffer, out Buffer) {
	for c, ch := range out {
		src := main.channel(c)
		if src == nil {
			for i := range ch {
				ch[i] = 0
			}
			continue
		}
		copy(ch, src)
	}
}

// fillMono writes one channel of samples into every channel of out.
func fillMono(out Buffer) {
	for c := 1; c < len(out); c++ {
		copy(out[c], out[0])
	}
}

// sideOrNil returns sides[i] or nil.
func sideOrNil(sides []Buffer, i int) Buffer {
	if i < len(sides) {
		return sides[i]
	}
	return nil
}
