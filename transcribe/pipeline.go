// Package transcribe converts a pitch/confidence contour produced by an
// external pitch estimator into a clean, key-snapped, tempo-quantized
// sequence of notes.
//
// The pipeline is a single synchronous pass per audio segment; every
// stage consumes its input fully and returns a freshly built collection,
// so independent segments can be transcribed concurrently as long as the
// injected estimator tolerates it.
package transcribe

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// Transcriber runs the melody pipeline over single audio segments.
type Transcriber struct {
	estimator PitchEstimator
	cfg       Config
}

// New returns a Transcriber using the given pitch estimator and config.
func New(estimator PitchEstimator, cfg Config) *Transcriber {
	return &Transcriber{estimator: estimator, cfg: cfg}
}

// Result is the output of one pipeline run.
type Result struct {
	Notes  []MidiNote // ordered by start time
	Key    Key
	Tempo  TempoEstimate
	Onsets []float64
}

// Run transcribes one audio segment. The signal must be mono at the
// configured sample rate. The context bounds the external estimator call,
// the only potentially slow stage.
//
// Errors: ErrEmptyAudio for zero-length input, ErrNoMelody when
// segmentation finds no pitched content, and estimator failures wrapped
// with stage context. A degraded tempo estimate is not an error; it
// disables quantization and is reported in the result.
func (t *Transcriber) Run(ctx context.Context, signal []float64, sampleRate int) (*Result, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyAudio
	}
	if sampleRate != t.cfg.SampleRate {
		return nil, fmt.Errorf("signal rate %d does not match pipeline rate %d", sampleRate, t.cfg.SampleRate)
	}

	harmonic, original := Preprocess(signal, t.cfg)
	log.Printf("[melody] preprocessed: %d samples @ %dHz", len(original), sampleRate)

	frames, err := t.estimator.Estimate(ctx, harmonic, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch estimation: %w", err)
	}
	log.Printf("[melody] pitch contour: %d frames", len(frames))

	filtered := FilterContour(frames, t.cfg)

	onsets := DetectOnsets(original, t.cfg)
	log.Printf("[melody] onsets: %d", len(onsets))

	notes, err := SegmentNotes(filtered, onsets, t.cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[melody] raw notes: %d", len(notes))

	key := DetectKey(original, sampleRate)
	midiNotes := SnapNotes(notes, key)
	log.Printf("[melody] key: %d %s", key.Root, key.Mode)

	tempo := EstimateTempo(original, sampleRate, onsets, t.cfg)
	midiNotes = QuantizeNotes(midiNotes, tempo, t.cfg)
	log.Printf("[melody] tempo: %.1f BPM (reliable=%v)", tempo.BPM, tempo.Reliable)

	sort.Slice(midiNotes, func(i, j int) bool {
		if midiNotes[i].Start != midiNotes[j].Start {
			return midiNotes[i].Start < midiNotes[j].Start
		}
		return midiNotes[i].Pitch < midiNotes[j].Pitch
	})

	return &Result{
		Notes:  midiNotes,
		Key:    key,
		Tempo:  tempo,
		Onsets: onsets,
	}, nil
}
