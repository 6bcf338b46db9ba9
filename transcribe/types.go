package transcribe

import (
	"context"
	"errors"
)

// Propagating failures. Everything else in the pipeline degrades locally
// with safe defaults instead of returning an error.
var (
	// ErrNoMelody is returned when segmentation produces no notes at all.
	ErrNoMelody = errors.New("no melodic content detected")
	// ErrEmptyAudio is returned for zero-length input signals.
	ErrEmptyAudio = errors.New("empty audio signal")
)

// PitchFrame is one frame of the pitch contour produced by the estimator.
// FreqHz == 0 marks an unvoiced frame. Frames arrive at a fixed hop interval.
type PitchFrame struct {
	Time       float64
	FreqHz     float64
	Confidence float64
}

// Span is a half-open [Start, End) run of contiguous voiced frames.
// Spans are the unit of per-region smoothing: filtering never crosses a
// span boundary because boundaries carry attack/release information.
type Span struct {
	Start int
	End   int
}

// Len returns the number of frames covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// RawNote is a segmented note candidate before key snapping.
// Invariant: End > Start and End-Start >= MinNoteDuration.
type RawNote struct {
	PitchHz       float64
	Start         float64
	End           float64
	AvgConfidence float64
}

// MidiNote is a key-snapped, velocity-assigned note.
type MidiNote struct {
	Pitch    int // 0..127
	Start    float64
	End      float64
	Velocity int // 0..127
}

// Mode is the scale mode of a detected key.
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// Key is the detected key of a segment, immutable once computed.
type Key struct {
	Root int // pitch class 0..11, 0 = C
	Mode Mode
}

// TempoEstimate carries the estimated tempo and whether it is trustworthy.
// An unreliable estimate is still usable for display, but quantization is
// skipped: unquantized output beats wrong-grid output.
type TempoEstimate struct {
	BPM      float64
	Reliable bool
}

// PitchEstimator produces a pitch contour from the harmonic signal.
// The implementation is an external model; the context bounds the call
// (it is the only potentially slow step in the pipeline).
type PitchEstimator interface {
	Estimate(ctx context.Context, harmonic []float64, sampleRate int) ([]PitchFrame, error)
}
