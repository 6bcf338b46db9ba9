// Package analysis provides the spectral feature extraction used by the
// transcription pipeline: centroid, rolloff, RMS envelopes, chroma energy,
// and the onset-strength envelope.
package analysis

import "math"

// Centroid returns the spectral centroid of the window in Hz, the
// magnitude-weighted mean frequency. A silent or empty window yields 0.
func Centroid(window []float64, sampleRate int) float64 {
	if len(window) == 0 || sampleRate <= 0 {
		return 0
	}
	mag, size, err := magnitudeSpectrum(window)
	if err != nil {
		return 0
	}
	binHz := float64(sampleRate) / float64(size)

	var num, den float64
	for k, m := range mag {
		num += float64(k) * binHz * m
		den += m
	}
	if den <= 0 {
		return 0
	}
	return num / den
}

// Rolloff returns the frequency in Hz below which 85% of the spectral
// energy lies. A silent or empty window yields 0.
func Rolloff(window []float64, sampleRate int) float64 {
	return RolloffAt(window, sampleRate, 0.85)
}

// RolloffAt is Rolloff with an explicit energy fraction in (0,1].
func RolloffAt(window []float64, sampleRate int, fraction float64) float64 {
	if len(window) == 0 || sampleRate <= 0 || fraction <= 0 {
		return 0
	}
	mag, size, err := magnitudeSpectrum(window)
	if err != nil {
		return 0
	}
	binHz := float64(sampleRate) / float64(size)

	var total float64
	for _, m := range mag {
		total += m * m
	}
	if total <= 0 {
		return 0
	}

	target := total * fraction
	var acc float64
	for k, m := range mag {
		acc += m * m
		if acc >= target {
			return float64(k) * binHz
		}
	}
	return float64(len(mag)-1) * binHz
}

// RMSEnvelope computes the per-frame root-mean-square level of x.
// Inputs shorter than one frame yield a single-frame envelope.
func RMSEnvelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) == 0 {
		return nil
	}
	if len(x) < frame {
		return []float64{rms(x)}
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms(x[start : start+frame])
	}
	return out
}

// PeakDB returns the peak absolute amplitude of x in dBFS.
// Silence maps to -100 dB rather than -Inf.
func PeakDB(x []float64) float64 {
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak <= 0 {
		return -100
	}
	return 20 * math.Log10(peak)
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func linToDB(v float64) float64 {
	if v <= 0 {
		return -100
	}
	return 20 * math.Log10(v)
}
