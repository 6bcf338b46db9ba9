package analysis

import "math"

const onsetFFTSize = 1024

// OnsetStrength computes a spectral-flux onset envelope at the given hop:
// the half-wave-rectified frame-to-frame increase in log magnitude, summed
// across bins and averaged. One value per STFT frame; the first frame is 0.
// Percussive transients produce sharp maxima, which is why the caller feeds
// the original rather than the harmonic-only signal.
func OnsetStrength(x []float64, sampleRate, hop int) []float64 {
	if len(x) == 0 || sampleRate <= 0 || hop <= 0 {
		return nil
	}

	size := onsetFFTSize
	for size > len(x) && size > 64 {
		size >>= 1
	}
	if size > len(x) {
		return nil
	}

	frames, err := stftMagnitudes(x, size, hop)
	if err != nil || len(frames) == 0 {
		return nil
	}

	nBins := len(frames[0])
	prev := make([]float64, nBins)
	cur := make([]float64, nBins)
	for k, m := range frames[0] {
		prev[k] = logCompress(m)
	}

	env := make([]float64, len(frames))
	for i := 1; i < len(frames); i++ {
		var flux float64
		for k, m := range frames[i] {
			cur[k] = logCompress(m)
			if d := cur[k] - prev[k]; d > 0 {
				flux += d
			}
		}
		env[i] = flux / float64(nBins)
		prev, cur = cur, prev
	}
	return env
}

// logCompress maps a magnitude onto a compressed log scale, stable at zero.
func logCompress(m float64) float64 {
	return math.Log1p(1000 * m)
}

const (
	onsetMeanRadius = 5 // frames of moving-mean context on each side
	onsetMinGap     = 3 // minimum frames between successive onsets
)

// Onsets detects note attacks: peaks of the onset-strength envelope that
// exceed the local moving mean by delta, backtracked to the preceding
// local minimum so the reported time is the attack point rather than the
// envelope maximum. Returns ordered onset times in seconds.
func Onsets(x []float64, sampleRate, hop int, delta float64) []float64 {
	env := OnsetStrength(x, sampleRate, hop)
	return PickOnsets(env, float64(hop)/float64(sampleRate), delta)
}

// PickOnsets runs peak picking with backtracking over a precomputed
// onset-strength envelope. hopTime is the envelope frame interval.
func PickOnsets(env []float64, hopTime, delta float64) []float64 {
	if len(env) < 3 || hopTime <= 0 {
		return nil
	}

	var onsets []float64
	lastFrame := -onsetMinGap - 1
	for i := 1; i < len(env)-1; i++ {
		if env[i] <= env[i-1] || env[i] < env[i+1] {
			continue
		}
		if env[i] < movingMean(env, i, onsetMeanRadius)+delta {
			continue
		}
		if i-lastFrame <= onsetMinGap {
			continue
		}

		// Backtrack to the local minimum preceding the peak.
		j := i
		for j > 0 && env[j-1] < env[j] {
			j--
		}
		t := float64(j) * hopTime
		if len(onsets) > 0 && t <= onsets[len(onsets)-1] {
			lastFrame = i
			continue
		}
		onsets = append(onsets, t)
		lastFrame = i
	}
	return onsets
}

func movingMean(env []float64, center, radius int) float64 {
	lo := center - radius
	if lo < 0 {
		lo = 0
	}
	hi := center + radius + 1
	if hi > len(env) {
		hi = len(env)
	}
	var sum float64
	for i := lo; i < hi; i++ {
		sum += env[i]
	}
	return sum / float64(hi-lo)
}
