package transcribe

import (
	"math"
	"testing"
)

func energy(x []float64) float64 {
	var e float64
	for _, v := range x {
		e += v * v
	}
	return e
}

func TestPreprocessNormalizesPeak(t *testing.T) {
	cfg := DefaultConfig()
	signal := sineSignal(440, cfg.SampleRate, 1.0) // amplitude 0.5

	_, original := Preprocess(signal, cfg)

	var peak float64
	for _, v := range original {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-1.0) > 1e-6 {
		t.Fatalf("peak after normalization = %f, want 1", peak)
	}
}

func TestPreprocessSilencePassesThrough(t *testing.T) {
	cfg := DefaultConfig()
	signal := make([]float64, cfg.SampleRate)

	harmonic, original := Preprocess(signal, cfg)
	if len(harmonic) != len(signal) || len(original) != len(signal) {
		t.Fatalf("length changed: %d, %d", len(harmonic), len(original))
	}
	if energy(harmonic) != 0 || energy(original) != 0 {
		t.Fatal("silence gained energy")
	}
}

func TestPreprocessDoesNotModifyInput(t *testing.T) {
	cfg := DefaultConfig()
	signal := sineSignal(440, cfg.SampleRate, 0.5)
	before := make([]float64, len(signal))
	copy(before, signal)

	Preprocess(signal, cfg)

	for i := range signal {
		if signal[i] != before[i] {
			t.Fatalf("input modified at sample %d", i)
		}
	}
}

func TestHarmonicComponentKeepsSteadyTone(t *testing.T) {
	// A steady sine is purely harmonic: separation must retain most of it.
	sr := 16000
	signal := sineSignal(440, sr, 1.0)

	harmonic := harmonicComponent(signal)
	if len(harmonic) != len(signal) {
		t.Fatalf("length changed: %d vs %d", len(harmonic), len(signal))
	}

	in := energy(signal)
	out := energy(harmonic)
	if out < 0.5*in {
		t.Fatalf("harmonic energy %f below half of input %f", out, in)
	}
}

func TestHarmonicComponentSuppressesClicks(t *testing.T) {
	// A sparse click train is purely percussive: most of its energy must
	// end up in the discarded percussive component.
	sr := 16000
	signal := make([]float64, sr)
	for i := 0; i < len(signal); i += 2000 {
		signal[i] = 1.0
	}

	harmonic := harmonicComponent(signal)
	in := energy(signal)
	out := energy(harmonic)
	if out > 0.5*in {
		t.Fatalf("harmonic kept %f of %f click energy", out, in)
	}
}

func TestHarmonicComponentShortInputIsCopied(t *testing.T) {
	signal := []float64{0.1, -0.2, 0.3}
	harmonic := harmonicComponent(signal)
	if len(harmonic) != len(signal) {
		t.Fatalf("length changed: %d", len(harmonic))
	}
	for i := range signal {
		if harmonic[i] != signal[i] {
			t.Fatalf("short input not copied verbatim at %d", i)
		}
	}
	harmonic[0] = 9
	if signal[0] == 9 {
		t.Fatal("short path aliased the input")
	}
}

func TestNoiseGateZeroesQuietRegions(t *testing.T) {
	cfg := DefaultConfig()
	sr := cfg.SampleRate
	signal := make([]float64, sr)
	// Loud first half, near-silent second half well below the -40dB floor.
	for i := 0; i < sr/2; i++ {
		signal[i] = 0.8 * math.Sin(2*math.Pi*440*float64(i)/float64(sr))
	}
	for i := sr / 2; i < sr; i++ {
		signal[i] = 1e-4 * math.Sin(2*math.Pi*440*float64(i)/float64(sr))
	}

	noiseGate(signal, cfg.NoiseGateDB)

	if energy(signal[:sr/4]) == 0 {
		t.Fatal("gate removed the loud region")
	}
	// The last partial frame is not gated, so stop short of the tail.
	if e := energy(signal[sr/2+gateFrameLen : sr-gateFrameLen]); e != 0 {
		t.Fatalf("quiet region survived the gate with energy %g", e)
	}
}
