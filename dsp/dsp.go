// Package dsp provides the small IIR building blocks used by the
// percussion analysis path.
package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float64
	a1, a2     float64

	// State (previous samples)
	x1, x2 float64 // input history
	y1, y2 float64 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float64) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float64) float64 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = dspcore.FlushDenormals(output)

	// Update state
	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewLowpass creates a lowpass biquad filter
func NewLowpass(cutoff, sampleRate, q float64) *Biquad {
	w0 := 2.0 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	// Normalize by a0
	return NewBiquad(b0/a0, b1/a0, b2/a0, a1/a0, a2/a0)
}

// NewHighpass creates a highpass biquad filter
func NewHighpass(cutoff, sampleRate, q float64) *Biquad {
	w0 := 2.0 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := (1.0 + cosw0) / 2.0
	b1 := -(1.0 + cosw0)
	b2 := (1.0 + cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	// Normalize by a0
	return NewBiquad(b0/a0, b1/a0, b2/a0, a1/a0, a2/a0)
}

// Butterworth Q values for a 4th-order cascade of two biquad sections.
var butterworth4Q = [2]float64{0.54119610, 1.30656296}

// NewHighpass4 creates a 4th-order Butterworth highpass as a cascade of
// two biquad sections.
func NewHighpass4(cutoff, sampleRate float64) *Cascade {
	return &Cascade{
		sections: []*Biquad{
			NewHighpass(cutoff, sampleRate, butterworth4Q[0]),
			NewHighpass(cutoff, sampleRate, butterworth4Q[1]),
		},
	}
}

// Cascade chains biquad sections in series.
type Cascade struct {
	sections []*Biquad
}

// Process processes one sample through all sections
func (c *Cascade) Process(input float64) float64 {
	for _, s := range c.sections {
		input = s.Process(input)
	}
	return input
}

// ProcessBlock filters a whole block, returning a new slice.
func (c *Cascade) ProcessBlock(input []float64) []float64 {
	out := make([]float64, len(input))
	for i, v := range input {
		out[i] = c.Process(v)
	}
	return out
}

// Reset clears the state of all sections
func (c *Cascade) Reset() {
	for _, s := range c.sections {
		s.Reset()
	}
}
