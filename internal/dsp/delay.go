package dsp

import "math"

// ringBuffer is a fixed-capacity delay line.
type ringBuffer struct {
	data []float32
	pos  int
}

func newRingBuffer(size int) *ringBuffer {
	if size < 1 {
		size = 1
	}
	return &ringBuffer{data: make([]float32, size)}
}

// read returns the sample written d samples ago, clamped to the capacity.
// d == 0 yields the most recent write.
func (r *ringBuffer) read(d int) float32 {
	n := len(r.data)
	if d < 0 {
		d = 0
	}
	if d >= n {
		d = n - 1
	}
	i := r.pos - 1 - d
	for i < 0 {
		i += n
	}
	return r.data[i]
}

func (r *ringBuffer) write(v float32) {
	r.data[r.pos] = v
	r.pos++
	if r.pos == len(r.data) {
		r.pos = 0
	}
}

// DelayN delays its input by a whole number of samples.
type DelayN struct {
	n     int
	lines [2]*ringBuffer
}

// maxDelaySamples bounds a DelayN line: ten seconds at 192 kHz.
const maxDelaySamples = 10 * 192000

// DelaySamples converts a delay length to a sample count in
// [0, maxDelaySamples]. NaN maps to 0 and +Inf to the maximum.
func DelaySamples(n float64) int {
	switch {
	case math.IsNaN(n), n <= 0:
		return 0
	case n >= maxDelaySamples:
		return maxDelaySamples
	}
	return int(n)
}

// NewDelayN constructs a sample-count delay, clamped to [0, maxDelaySamples].
// The delay line is sized for n, so a later, longer delay from a side input
// is clamped to n.
func NewDelayN(n int) *DelayN {
	n = min(max(n, 0), maxDelaySamples)
	return &DelayN{n: n, lines: [2]*ringBuffer{newRingBuffer(n + 1), newRingBuffer(n + 1)}}
}

func (d *DelayN) Samples() int { return d.n }
func (d *DelayN) Channels() int { return 2 }

func (d *DelayN) Process(main Buffer, sides []Buffer, out Buffer) {
	mod := sideOrNil(sides, 0).channel(0)
	for c, ch := range out {
		line := d.lines[c%2]
		src := main.channel(c)
		for i := range ch {
			n := d.n
			if mod != nil {
				n = DelaySamples(float64(mod[i]))
			}
			x := float32(0)
			if src != nil {
				x = src[i]
			}
			line.write(x)
			ch[i] = line.read(n)
		}
	}
}

// maxDelayMs bounds a DelayMs line.
const maxDelayMs = 5000.0

// DelayMs delays its input by a time in milliseconds.
type DelayMs struct {
	ms    float64
	sr    float64
	lines [2]*ringBuffer
}

// NewDelayMs constructs a time-based delay.
func NewDelayMs(ms float64, ctx Context) *DelayMs {
	sr := ctx.sampleRate()
	size := int(maxDelayMs*sr/1000) + 1
	return &DelayMs{ms: ms, sr: sr, lines: [2]*ringBuffer{newRingBuffer(size), newRingBuffer(size)}}
}

func (d *DelayMs) DelayMs() float64 { return d.ms }
func (d *DelayMs) Channels() int { return 2 }

func (d *DelayMs) Process(main Buffer, sides []Buffer, out Buffer) {
	mod := sideOrNil(sides, 0).channel(0)
	for c, ch := range out {
		line := d.lines[c%2]
		src := main.channel(c)
		for i := range ch {
			ms := d.ms
			if mod != nil {
				ms = float64(mod[i])
			}
			x := float32(0)
			if src != nil {
				x = src[i]
			}
			line.write(x)
			ch[i] = line.read(int(ms * d.sr / 1000))
		}
	}
}
