package transcribe

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-transcribe/analysis"
)

const (
	minBPM = 60.0
	maxBPM = 200.0
	// Inter-onset intervals shorter than this are double-triggers, not beats.
	minIOI = 0.1
)

// EstimateTempo estimates tempo from the original signal. The primary
// method is autocorrelation beat tracking over the onset-strength
// envelope; when that lands outside the sane BPM range or the envelope is
// too short, the onset inter-onset-interval fallback takes over. The
// returned estimate is never discarded: when Reliable is false it still
// carries a usable default, and downstream quantization is skipped.
func EstimateTempo(original []float64, sampleRate int, onsets []float64, cfg Config) TempoEstimate {
	env := analysis.OnsetStrength(original, sampleRate, cfg.Hop)
	if bpm, ok := tempoFromEnvelope(env, float64(cfg.Hop)/float64(sampleRate)); ok {
		return TempoEstimate{BPM: bpm, Reliable: true}
	}
	return TempoFromOnsets(onsets, cfg.MinOnsetsForTempo)
}

// tempoFromEnvelope beat-tracks by autocorrelating the mean-removed onset
// envelope over the lag range corresponding to 60-200 BPM and taking the
// strongest positive correlation.
func tempoFromEnvelope(env []float64, hopTime float64) (float64, bool) {
	if hopTime <= 0 || len(env) == 0 {
		return 0, false
	}

	minLag := int(60.0 / maxBPM / hopTime) // shortest beat period
	maxLag := int(60.0 / minBPM / hopTime) // longest beat period
	if minLag < 1 || len(env) < 2*maxLag {
		return 0, false
	}

	var mean float64
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(env); i++ {
			corr += (env[i] - mean) * (env[i+lag] - mean)
		}
		corr /= float64(len(env) - lag)
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr <= 0 {
		return 0, false
	}

	bpm := 60.0 / (float64(bestLag) * hopTime)
	if bpm < minBPM || bpm > maxBPM {
		return 0, false
	}
	return bpm, true
}

// TempoFromOnsets estimates tempo from the median inter-onset interval,
// discarding double-trigger intervals and octave-folding the result into
// the sane BPM range. Fewer than minOnsets onsets yield the 120 BPM
// default flagged unreliable.
func TempoFromOnsets(onsets []float64, minOnsets int) TempoEstimate {
	fallback := TempoEstimate{BPM: 120, Reliable: false}
	if len(onsets) < minOnsets {
		return fallback
	}

	var iois []float64
	for i := 1; i < len(onsets); i++ {
		if d := onsets[i] - onsets[i-1]; d > minIOI {
			iois = append(iois, d)
		}
	}
	if len(iois) < 2 {
		return fallback
	}

	sort.Float64s(iois)
	mid := len(iois) / 2
	medianIOI := iois[mid]
	if len(iois)%2 == 0 {
		medianIOI = 0.5 * (iois[mid-1] + iois[mid])
	}
	if medianIOI <= 0 || math.IsInf(medianIOI, 0) {
		return fallback
	}

	bpm := 60.0 / medianIOI
	for bpm < minBPM {
		bpm *= 2
	}
	for bpm > maxBPM {
		bpm /= 2
	}
	return TempoEstimate{BPM: bpm, Reliable: true}
}
