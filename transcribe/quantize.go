package transcribe

import (
	"math"
	"sort"
)

// QuantizeNotes snaps note boundaries to a beat grid when the tempo
// estimate is reliable; an unreliable tempo returns the input unchanged
// (a fresh copy), because unquantized output is strictly better than
// output on a wrong grid.
//
// Start and end snap independently, and only when the offset-to-grid
// ratio is within the snap tolerance: forcing borderline notes onto the
// grid would flatten expressive timing. Snapping can create same-pitch
// overlaps that did not exist before, so a final pass merges those.
func QuantizeNotes(notes []MidiNote, tempo TempoEstimate, cfg Config) []MidiNote {
	out := make([]MidiNote, len(notes))
	copy(out, notes)
	if !tempo.Reliable || tempo.BPM <= 0 {
		return out
	}

	beatDur := 60.0 / tempo.BPM
	gridDur := beatDur / float64(cfg.GridSubdivisions)

	for i := range out {
		start := snapToGrid(out[i].Start, gridDur, cfg.SnapTolerance)
		end := snapToGrid(out[i].End, gridDur, cfg.SnapTolerance)
		if end <= start {
			end = start + gridDur
		}
		out[i].Start = start
		out[i].End = end
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pitch != out[j].Pitch {
			return out[i].Pitch < out[j].Pitch
		}
		return out[i].Start < out[j].Start
	})

	merged := out[:0]
	for _, n := range out {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Pitch == n.Pitch && n.Start < last.End {
				if n.End > last.End {
					last.End = n.End
				}
				if n.Velocity > last.Velocity {
					last.Velocity = n.Velocity
				}
				continue
			}
		}
		merged = append(merged, n)
	}
	return merged
}

// snapToGrid snaps t to the nearest grid line when the offset is within
// tolerance of the grid spacing, otherwise leaves it untouched.
func snapToGrid(t, gridDur, tolerance float64) float64 {
	snapped := math.Round(t/gridDur) * gridDur
	if math.Abs(t-snapped)/gridDur <= tolerance {
		return snapped
	}
	return t
}
