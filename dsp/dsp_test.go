package dsp

import (
	"math"
	"testing"
)

func sineRMS(f *Cascade, freq, sampleRate float64, n int) float64 {
	var sum float64
	// Skip the first quarter so the filter transient settles.
	skip := n / 4
	for i := 0; i < n; i++ {
		y := f.Process(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
		if i >= skip {
			sum += y * y
		}
	}
	return math.Sqrt(sum / float64(n-skip))
}

func TestHighpass4PassesAboveCutoff(t *testing.T) {
	sr := 16000.0
	hp := NewHighpass4(1000, sr)
	out := sineRMS(hp, 4000, sr, 8000)
	in := 1 / math.Sqrt2
	if out < 0.9*in {
		t.Fatalf("passband rms = %f, want near %f", out, in)
	}
}

func TestHighpass4RejectsBelowCutoff(t *testing.T) {
	sr := 16000.0
	hp := NewHighpass4(1000, sr)
	out := sineRMS(hp, 100, sr, 8000)
	in := 1 / math.Sqrt2
	// 4th-order slope: well over 40dB down at a tenth of the cutoff.
	if out > 0.01*in {
		t.Fatalf("stopband rms = %f, want strong rejection", out)
	}
}

func TestBiquadLowpassDCGain(t *testing.T) {
	lp := NewLowpass(1000, 16000, 0.7071)
	var y float64
	for i := 0; i < 4000; i++ {
		y = lp.Process(1.0)
	}
	if math.Abs(y-1.0) > 1e-6 {
		t.Fatalf("DC gain = %f, want 1", y)
	}
}

func TestBiquadReset(t *testing.T) {
	b := NewHighpass(1000, 16000, 0.7071)
	first := b.Process(1.0)

	b.Process(0.5)
	b.Process(-0.3)
	b.Reset()

	if got := b.Process(1.0); got != first {
		t.Fatalf("after Reset first output = %f, want %f", got, first)
	}
}

func TestCascadeProcessBlockMatchesSamplewise(t *testing.T) {
	sr := 16000.0
	in := make([]float64, 512)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 3000 * float64(i) / sr)
	}

	block := NewHighpass4(1000, sr).ProcessBlock(in)

	ref := NewHighpass4(1000, sr)
	for i, v := range in {
		if want := ref.Process(v); block[i] != want {
			t.Fatalf("sample %d: block %f, samplewise %f", i, block[i], want)
		}
	}
}
