// Package resample converts mono audio between sample rates using linear
// interpolation over fixed-size input chunks.
package resample

import (
	"fmt"
	"math"
)

// Converter resamples fixed-size chunks of mono float32 samples. It carries
// the read position and the last input sample across calls, so feeding
// consecutive chunks yields the same stream as resampling their
// concatenation.
type Converter struct {
	step  float64 // input samples advanced per output sample
	chunk int

	pos  float64 // next output position, relative to the current chunk start
	prev float32 // last sample of the previous chunk
}

// New returns a Converter consuming chunk-sized blocks at inRate and
// producing samples at outRate. Only mono input (channels == 1) is
// supported.
func New(inRate, outRate, chunk, channels int) (*Converter, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("resample: invalid rate conversion %d -> %d", inRate, outRate)
	}
	if chunk <= 0 {
		return nil, fmt.Errorf("resample: invalid chunk size %d", chunk)
	}
	if channels != 1 {
		return nil, fmt.Errorf("resample: %d channels not supported, converter is mono only", channels)
	}
	return &Converter{
		step:  float64(inRate) / float64(outRate),
		chunk: chunk,
	}, nil
}

// Process consumes exactly one chunk of input samples and returns the
// resampled output. The input slice is not retained.
func (c *Converter) Process(in []float32) ([]float32, error) {
	if len(in) != c.chunk {
		return nil, fmt.Errorf("resample: got %d samples, want chunk of %d", len(in), c.chunk)
	}

	n := len(in)
	out := make([]float32, 0, int(float64(n)/c.step)+2)
	for c.pos <= float64(n-1) {
		i := int(math.Floor(c.pos))
		frac := c.pos - float64(i)

		s0 := c.at(in, i)
		if frac == 0 {
			out = append(out, s0)
		} else {
			s1 := c.at(in, i+1)
			out = append(out, s0+float32(frac)*(s1-s0))
		}
		c.pos += c.step
	}

	c.prev = in[n-1]
	c.pos -= float64(n)
	return out, nil
}

// at reads the continuous input stream; index -1 is the last sample of the
// previous chunk.
func (c *Converter) at(in []float32, i int) float32 {
	if i < 0 {
		return c.prev
	}
	return in[i]
}
