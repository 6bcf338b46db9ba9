package transcribe

import (
	"math"

	"github.com/cwbudde/algo-transcribe/analysis"
)

// Krumhansl-Schmuckler key profiles: empirically derived tone-stability
// ratings for each scale degree, indexed from the root.
var (
	majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

var (
	majorIntervals = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorIntervals = [7]int{0, 2, 3, 5, 7, 8, 10}
)

// DetectKey estimates the musical key of a signal from its chroma energy
// profile, correlating every rotation against the Krumhansl-Schmuckler
// templates. The single best of the 24 candidates wins; ties resolve to
// the first candidate in root-then-mode enumeration order, so the result
// is deterministic even on a flat profile.
func DetectKey(original []float64, sampleRate int) Key {
	chroma := analysis.Chroma(original, sampleRate)
	return DetectKeyFromChroma(chroma)
}

// DetectKeyFromChroma runs key selection on a precomputed chroma profile.
func DetectKeyFromChroma(chroma [12]float64) Key {
	best := Key{Root: 0, Mode: ModeMajor}
	bestCorr := math.Inf(-1)

	for root := 0; root < 12; root++ {
		var rotated [12]float64
		for i := 0; i < 12; i++ {
			rotated[i] = chroma[(i+root)%12]
		}

		if corr := pearson(rotated, majorProfile); corr > bestCorr {
			bestCorr = corr
			best = Key{Root: root, Mode: ModeMajor}
		}
		if corr := pearson(rotated, minorProfile); corr > bestCorr {
			bestCorr = corr
			best = Key{Root: root, Mode: ModeMinor}
		}
	}
	return best
}

// ScaleDegrees returns the seven pitch classes of the key's diatonic scale.
func (k Key) ScaleDegrees() [7]int {
	intervals := majorIntervals
	if k.Mode == ModeMinor {
		intervals = minorIntervals
	}
	var out [7]int
	for i, iv := range intervals {
		out[i] = (k.Root + iv) % 12
	}
	return out
}

// SnapNotes converts raw notes to MIDI notes, snapping each pitch to the
// nearest scale member of the key and deriving velocity from confidence.
func SnapNotes(notes []RawNote, key Key) []MidiNote {
	scale := key.ScaleDegrees()
	out := make([]MidiNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, MidiNote{
			Pitch:    snapToScale(roundedSemitone(n.PitchHz), scale),
			Start:    n.Start,
			End:      n.End,
			Velocity: velocityFromConfidence(n.AvgConfidence),
		})
	}
	return out
}

// snapToScale moves an integer MIDI pitch to the nearest scale member by
// circular pitch-class distance. An exact 6-semitone tie snaps downward:
// an explicit policy, not left to enumeration order or floating point.
// The signed offset stays within [-6, +5], so the note never wraps into
// the wrong octave.
func snapToScale(midi int, scale [7]int) int {
	pc := ((midi % 12) + 12) % 12

	bestDiff := 0
	bestAbs := 12
	for _, degree := range scale {
		diff := ((degree - pc) % 12 + 12) % 12 // 0..11
		if diff >= 6 {
			diff -= 12 // -6..5, the tie at 6 prefers downward
		}
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		if abs < bestAbs || (abs == bestAbs && diff < bestDiff) {
			bestAbs = abs
			bestDiff = diff
		}
	}

	snapped := midi + bestDiff
	if snapped < 0 {
		snapped = 0
	}
	if snapped > 127 {
		snapped = 127
	}
	return snapped
}

// velocityFromConfidence maps confidence linearly onto MIDI velocity,
// clamped to [40,127]: the floor keeps low-confidence notes audible, the
// ceiling respects the format's range.
func velocityFromConfidence(conf float64) int {
	v := int(conf * 127)
	if v < 40 {
		v = 40
	}
	if v > 127 {
		v = 127
	}
	return v
}

func pearson(a, b [12]float64) float64 {
	var meanA, meanB float64
	for i := 0; i < 12; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= 12
	meanB /= 12

	var cov, varA, varB float64
	for i := 0; i < 12; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA <= 0 || varB <= 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
