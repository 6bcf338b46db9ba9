// Package pitchest provides a self-contained autocorrelation pitch
// estimator satisfying transcribe.PitchEstimator. It stands in for the
// external model-based estimator in the cmd binaries and in tests; the
// pipeline itself is agnostic to which implementation it is given.
package pitchest

import (
	"context"
	"math"

	"github.com/cwbudde/algo-transcribe/transcribe"
)

// Estimator detects per-frame pitch by normalized autocorrelation.
type Estimator struct {
	FMin      float64 // lowest detectable fundamental, Hz
	FMax      float64 // highest detectable fundamental, Hz
	FrameSize int     // analysis frame length in samples
	Hop       int     // samples between frames
}

// New returns an Estimator covering the singing/humming range at a
// 10 ms hop for 16 kHz input.
func New() *Estimator {
	return &Estimator{
		FMin:      65,
		FMax:      1047,
		FrameSize: 1024,
		Hop:       160,
	}
}

// Estimate produces a pitch contour at a fixed hop. Frames with no clear
// periodicity report zero frequency; confidence is the normalized
// autocorrelation peak, clamped to [0,1]. The context is checked between
// frames so a caller-imposed timeout cuts the work short.
func (e *Estimator) Estimate(ctx context.Context, harmonic []float64, sampleRate int) ([]transcribe.PitchFrame, error) {
	if len(harmonic) < e.FrameSize {
		return nil, nil
	}

	minLag := int(float64(sampleRate) / e.FMax)
	maxLag := int(float64(sampleRate) / e.FMin)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= e.FrameSize {
		maxLag = e.FrameSize - 1
	}

	nFrames := 1 + (len(harmonic)-e.FrameSize)/e.Hop
	frames := make([]transcribe.PitchFrame, 0, nFrames)

	for t := 0; t < nFrames; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos := t * e.Hop
		frame := harmonic[pos : pos+e.FrameSize]
		freq, conf := e.detectFrame(frame, sampleRate, minLag, maxLag)

		frames = append(frames, transcribe.PitchFrame{
			Time:       float64(pos) / float64(sampleRate),
			FreqHz:     freq,
			Confidence: conf,
		})
	}
	return frames, nil
}

func (e *Estimator) detectFrame(frame []float64, sampleRate, minLag, maxLag int) (float64, float64) {
	var energy float64
	for _, v := range frame {
		energy += v * v
	}
	if energy < 1e-9 {
		return 0, 0
	}

	n := len(frame)
	bestLag, bestR := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var cross, e0, e1 float64
		for i := 0; i+lag < n; i++ {
			cross += frame[i] * frame[i+lag]
			e0 += frame[i] * frame[i]
			e1 += frame[i+lag] * frame[i+lag]
		}
		if e0 <= 0 || e1 <= 0 {
			continue
		}
		r := cross / math.Sqrt(e0*e1)
		if r > bestR {
			bestR = r
			bestLag = lag
		}
	}
	if bestLag == 0 || bestR <= 0 {
		return 0, 0
	}

	lag := refineLag(frame, bestLag, n)
	conf := bestR
	if conf > 1 {
		conf = 1
	}
	return float64(sampleRate) / lag, conf
}

// refineLag sharpens an integer lag by parabolic interpolation over the
// raw autocorrelation at lag-1, lag, lag+1.
func refineLag(frame []float64, lag, n int) float64 {
	acf := func(l int) float64 {
		var sum float64
		for i := 0; i+l < n; i++ {
			sum += frame[i] * frame[i+l]
		}
		return sum
	}
	if lag < 2 || lag+1 >= n {
		return float64(lag)
	}
	y0, y1, y2 := acf(lag-1), acf(lag), acf(lag+1)
	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return float64(lag)
	}
	delta := 0.5 * (y0 - y2) / denom
	if delta > 0.5 || delta < -0.5 {
		return float64(lag)
	}
	return float64(lag) + delta
}
