package transcribe

import (
	"math"
	"sort"
)

// SegmentNotes cuts a filtered contour into discrete note candidates and
// merges same-pitch fragments. Returns ErrNoMelody if nothing of at least
// the minimum note duration survives: downstream stages assume at least
// one note, so an empty result is a domain failure rather than a success.
func SegmentNotes(frames []PitchFrame, onsets []float64, cfg Config) ([]RawNote, error) {
	hop := hopFromTimes(frames)
	halfHop := hop * 0.5

	var notes []RawNote
	for _, span := range FindSpans(frames) {
		boundaries := spanBoundaries(frames, span, onsets, halfHop, cfg)

		for j := 0; j < len(boundaries)-1; j++ {
			lo := span.Start + boundaries[j]
			hi := span.Start + boundaries[j+1]
			if hi <= lo {
				continue
			}

			start := frames[lo].Time
			end := frames[hi-1].Time
			if end-start < cfg.MinNoteDuration {
				continue
			}

			notes = append(notes, RawNote{
				PitchHz:       medianFrequency(frames, lo, hi),
				Start:         start,
				End:           end,
				AvgConfidence: meanConfidence(frames, lo, hi),
			})
		}
	}

	notes = MergeSamePitch(notes, onsets, cfg.MaxMergeGap)
	if len(notes) == 0 {
		return nil, ErrNoMelody
	}
	return notes, nil
}

// spanBoundaries finds candidate note boundaries inside one span, as
// offsets relative to span.Start. A boundary opens where consecutive
// frames jump by more than the cents threshold, where confidence dips
// below the secondary threshold (an impending unvoiced region not yet
// zeroed), or where the frame lands within half a hop of a detected onset
// (re-articulation at the same pitch, invisible to pitch and confidence).
func spanBoundaries(frames []PitchFrame, span Span, onsets []float64, halfHop float64, cfg Config) []int {
	boundaries := []int{0}

	for i := span.Start + 1; i < span.End; i++ {
		rel := i - span.Start

		cents := math.Abs(centsBetween(frames[i].FreqHz, frames[i-1].FreqHz))
		if cents > cfg.PitchChangeCents {
			boundaries = append(boundaries, rel)
			continue
		}

		if frames[i].Confidence < cfg.ConfidenceDip {
			boundaries = append(boundaries, rel)
			continue
		}

		if onsetNear(onsets, frames[i].Time, halfHop) {
			boundaries = append(boundaries, rel)
		}
	}

	boundaries = append(boundaries, span.Len())
	sort.Ints(boundaries)
	return dedupeInts(boundaries)
}

// MergeSamePitch merges a note into its predecessor when both round to
// the same semitone, the gap between them is below maxGap, and no onset
// falls inside the gap: an onset there means a deliberate re-attack.
// The merged confidence is duration-weighted so a short low-confidence
// fragment cannot drag down a long reliable note.
//
// The pass is idempotent: running it on its own output is a no-op.
func MergeSamePitch(notes []RawNote, onsets []float64, maxGap float64) []RawNote {
	if len(notes) <= 1 {
		return notes
	}

	merged := make([]RawNote, 0, len(notes))
	merged = append(merged, notes[0])

	for _, note := range notes[1:] {
		prev := &merged[len(merged)-1]
		gap := note.Start - prev.End

		samePitch := roundedSemitone(prev.PitchHz) == roundedSemitone(note.PitchHz)
		smallGap := gap < maxGap

		if samePitch && smallGap && !onsetBetween(onsets, prev.End, note.Start) {
			prevDur := prev.End - prev.Start
			noteDur := note.End - note.Start
			total := prevDur + noteDur
			if total > 0 {
				prev.AvgConfidence = (prev.AvgConfidence*prevDur + note.AvgConfidence*noteDur) / total
			}
			prev.End = note.End
			continue
		}
		merged = append(merged, note)
	}
	return merged
}

// onsetNear reports whether any onset lies within tol of t.
// Onsets are ordered, so a binary search bounds the candidates.
func onsetNear(onsets []float64, t, tol float64) bool {
	i := sort.SearchFloat64s(onsets, t-tol)
	return i < len(onsets) && onsets[i] <= t+tol
}

// onsetBetween reports whether any onset lies in [lo, hi].
func onsetBetween(onsets []float64, lo, hi float64) bool {
	i := sort.SearchFloat64s(onsets, lo)
	return i < len(onsets) && onsets[i] <= hi
}

func dedupeInts(sorted []int) []int {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
