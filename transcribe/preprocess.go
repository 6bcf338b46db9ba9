package transcribe

import (
	"math"

	"github.com/cwbudde/algo-transcribe/analysis"
)

const (
	gateFrameLen = 2048
	gateHopLen   = 512
)

// Preprocess prepares a raw waveform for pitch analysis. It peak-
// normalizes the signal, separates the harmonic component, and applies a
// frame-wise noise gate to the harmonic stream. The original (normalized,
// ungated) signal is returned alongside: onset, key, and tempo analysis
// need the transient and rhythmic content that harmonic separation
// removes.
//
// Degenerate input never fails: an all-zero signal passes through as
// silence.
func Preprocess(signal []float64, cfg Config) (harmonic, original []float64) {
	y := make([]float64, len(signal))
	copy(y, signal)

	var peak float64
	for _, v := range y {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		inv := 1 / peak
		for i := range y {
			y[i] *= inv
		}
	}

	original = make([]float64, len(y))
	copy(original, y)

	harmonic = harmonicComponent(y)
	noiseGate(harmonic, cfg.NoiseGateDB)
	return harmonic, original
}

// noiseGate zeroes every fixed-length frame whose RMS level falls below
// floorDB, in place.
func noiseGate(x []float64, floorDB float64) {
	env := analysis.RMSEnvelope(x, gateFrameLen, gateHopLen)
	for i, r := range env {
		db := -100.0
		if r > 0 {
			db = 20 * math.Log10(r)
		}
		if db >= floorDB {
			continue
		}
		start := i * gateHopLen
		end := start + gateFrameLen
		if end > len(x) {
			end = len(x)
		}
		for j := start; j < end; j++ {
			x[j] = 0
		}
	}
}
