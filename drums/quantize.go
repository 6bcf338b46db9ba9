package drums

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-transcribe/transcribe"
)

// EstimateTempo estimates tempo from the classified hit times using the
// inter-onset-interval method.
func EstimateTempo(hits []Hit, cfg Config) transcribe.TempoEstimate {
	times := make([]float64, len(hits))
	for i, h := range hits {
		times[i] = h.Time
	}
	return transcribe.TempoFromOnsets(times, cfg.MinOnsetsForTempo)
}

// Quantize snaps hit times to the beat grid when the tempo estimate is
// reliable, mirroring the melody quantizer's tolerance rule. Unreliable
// tempo returns the hits unchanged (a fresh copy).
//
// Two same-class hits landing on the same grid line collapse into one,
// the earlier detection winning; distinct classes on one line are kept,
// since a kick and a hi-hat routinely coincide.
func Quantize(hits []Hit, tempo transcribe.TempoEstimate, cfg Config) []Hit {
	out := make([]Hit, len(hits))
	copy(out, hits)
	if !tempo.Reliable || tempo.BPM <= 0 {
		return out
	}

	gridDur := 60.0 / tempo.BPM / float64(cfg.GridSubdivisions)
	for i := range out {
		snapped := math.Round(out[i].Time/gridDur) * gridDur
		if math.Abs(out[i].Time-snapped)/gridDur <= cfg.SnapTolerance {
			out[i].Time = snapped
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })

	deduped := out[:0]
	for _, h := range out {
		dup := false
		for i := len(deduped) - 1; i >= 0 && deduped[i].Time == h.Time; i-- {
			if deduped[i].Class == h.Class {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, h)
		}
	}
	return deduped
}
