package transcribe

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

const (
	hpssFFTSize     = 1024
	hpssHop         = 256
	hpssMedianWidth = 17
)

// harmonicComponent separates the harmonic part of a signal by median-
// filter masking of its magnitude spectrogram: tonal content forms
// horizontal ridges (stable across time), percussive content vertical
// ones (broadband within a frame). A soft Wiener-style mask built from
// the two filtered spectrograms is applied to the complex STFT before
// windowed overlap-add resynthesis.
//
// Signals shorter than one analysis frame are returned unseparated.
func harmonicComponent(x []float64) []float64 {
	if len(x) < hpssFFTSize {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	size := hpssFFTSize
	hop := hpssHop
	half := size / 2

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}

	nFrames := 1 + (len(x)-size)/hop
	spec := make([][]complex128, nFrames)
	mag := make([][]float64, nFrames)

	buf := make([]float64, size)
	for t := 0; t < nFrames; t++ {
		pos := t * hop
		for i := 0; i < size; i++ {
			buf[i] = x[pos+i] * window[i]
		}
		spec[t] = fft.FFTReal(buf)
		m := make([]float64, half+1)
		for k := 0; k <= half; k++ {
			m[k] = cmplx.Abs(spec[t][k])
		}
		mag[t] = m
	}

	harm := medianAcrossTime(mag, hpssMedianWidth)
	perc := medianAcrossFreq(mag, hpssMedianWidth)

	// Soft mask and resynthesis.
	const eps = 1e-12
	out := make([]float64, len(x))
	wsum := make([]float64, len(x))
	for t := 0; t < nFrames; t++ {
		for k := 0; k <= half; k++ {
			h2 := harm[t][k] * harm[t][k]
			p2 := perc[t][k] * perc[t][k]
			m := h2 / (h2 + p2 + eps)
			spec[t][k] *= complex(m, 0)
			if k > 0 && k < half {
				spec[t][size-k] *= complex(m, 0)
			}
		}

		frame := fft.IFFT(spec[t])
		pos := t * hop
		for i := 0; i < size; i++ {
			out[pos+i] += real(frame[i]) * window[i]
			wsum[pos+i] += window[i] * window[i]
		}
	}
	for i := range out {
		if wsum[i] > 1e-8 {
			out[i] /= wsum[i]
		}
	}
	return out
}

// medianAcrossTime median-filters each frequency bin along the time axis.
func medianAcrossTime(mag [][]float64, width int) [][]float64 {
	nFrames := len(mag)
	nBins := len(mag[0])
	half := width / 2

	out := make([][]float64, nFrames)
	for t := range out {
		out[t] = make([]float64, nBins)
	}

	window := make([]float64, 0, width)
	for k := 0; k < nBins; k++ {
		for t := 0; t < nFrames; t++ {
			lo, hi := clampRange(t, half, nFrames)
			window = window[:0]
			for j := lo; j < hi; j++ {
				window = append(window, mag[j][k])
			}
			out[t][k] = medianInPlace(window)
		}
	}
	return out
}

// medianAcrossFreq median-filters each frame along the frequency axis.
func medianAcrossFreq(mag [][]float64, width int) [][]float64 {
	nFrames := len(mag)
	nBins := len(mag[0])
	half := width / 2

	out := make([][]float64, nFrames)
	window := make([]float64, 0, width)
	for t := 0; t < nFrames; t++ {
		out[t] = make([]float64, nBins)
		for k := 0; k < nBins; k++ {
			lo, hi := clampRange(k, half, nBins)
			window = window[:0]
			window = append(window, mag[t][lo:hi]...)
			out[t][k] = medianInPlace(window)
		}
	}
	return out
}

func clampRange(center, half, n int) (int, int) {
	lo := center - half
	if lo < 0 {
		lo = 0
	}
	hi := center + half + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}

func medianInPlace(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return 0.5 * (v[mid-1] + v[mid])
}
