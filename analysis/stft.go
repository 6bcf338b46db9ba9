package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// stftMagnitudes computes hann-windowed magnitude spectra at the given
// frame size and hop. Each row has size/2+1 bins. Signals shorter than
// one frame yield no rows.
func stftMagnitudes(x []float64, size, hop int) ([][]float64, error) {
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, err
	}

	hann := make([]float64, size)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}

	buf := make([]float64, size)
	spec := make([]complex128, size/2+1)

	var frames [][]float64
	for pos := 0; pos+size <= len(x); pos += hop {
		for i := 0; i < size; i++ {
			buf[i] = x[pos+i] * hann[i]
		}
		plan.Forward(spec, buf)

		mag := make([]float64, len(spec))
		for k := range spec {
			mag[k] = cmplx.Abs(spec[k])
		}
		frames = append(frames, mag)
	}
	return frames, nil
}

// magnitudeSpectrum computes a single hann-windowed magnitude spectrum of
// the whole input, zero-padded to the next power of two.
func magnitudeSpectrum(x []float64) ([]float64, int, error) {
	size := nextPow2(len(x))
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, 0, err
	}

	buf := make([]float64, size)
	n := len(x)
	for i := 0; i < n; i++ {
		w := 1.0
		if n > 1 {
			w = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
		buf[i] = x[i] * w
	}

	spec := make([]complex128, size/2+1)
	plan.Forward(spec, buf)

	mag := make([]float64, len(spec))
	for k := range spec {
		mag[k] = cmplx.Abs(spec[k])
	}
	return mag, size, nil
}

// nextPow2 returns the smallest power of two >= n (minimum 64).
func nextPow2(n int) int {
	p := 64
	for p < n {
		p <<= 1
	}
	return p
}
