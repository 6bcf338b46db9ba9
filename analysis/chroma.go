package analysis

import "math"

const (
	chromaFFTSize = 4096
	chromaHop     = 1024
	chromaFMin    = 60.0
	chromaFMax    = 4000.0
)

// Chroma computes a 12-bin pitch-class energy profile summed over the
// whole signal. Bin k of the STFT contributes its squared magnitude to the
// pitch class of its center frequency; octave information is discarded.
// A silent or too-short signal yields the zero profile.
func Chroma(x []float64, sampleRate int) [12]float64 {
	var out [12]float64
	if len(x) == 0 || sampleRate <= 0 {
		return out
	}

	size := chromaFFTSize
	for size > len(x) && size > 64 {
		size >>= 1
	}
	if size > len(x) {
		return out
	}
	frames, err := stftMagnitudes(x, size, chromaHop)
	if err != nil || len(frames) == 0 {
		return out
	}

	binHz := float64(sampleRate) / float64(size)
	for _, mag := range frames {
		for k := 1; k < len(mag); k++ {
			f := float64(k) * binHz
			if f < chromaFMin || f > chromaFMax {
				continue
			}
			pc := pitchClass(f)
			out[pc] += mag[k] * mag[k]
		}
	}
	return out
}

// pitchClass maps a frequency in Hz to its chromatic pitch class (0 = C).
func pitchClass(hz float64) int {
	midi := 69 + 12*math.Log2(hz/440.0)
	pc := int(math.Round(midi)) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}
