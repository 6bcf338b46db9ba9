package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
)

// Smoothing selects the per-span contour smoothing strategy.
type Smoothing int

const (
	// SmoothingMedian applies a centered median filter inside each span.
	SmoothingMedian Smoothing = iota
	// SmoothingMajority snaps each frame to the modal semitone of its
	// neighborhood, looking past immediate neighbors for a stable anchor.
	SmoothingMajority
)

// Config holds every tunable threshold in the melody pipeline.
type Config struct {
	// Preprocessing
	SampleRate  int     `json:"sample_rate"`
	NoiseGateDB float64 `json:"noise_gate_db"`

	// Pitch contour
	Hop int `json:"hop"` // samples between pitch frames

	// Confidence filtering
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	MedianFilterSize    int       `json:"median_filter_size"`
	MinVoicedDuration   float64   `json:"min_voiced_duration"`
	Smoothing           Smoothing `json:"smoothing"`

	// Note segmentation
	PitchChangeCents float64 `json:"pitch_change_cents"`
	MinNoteDuration  float64 `json:"min_note_duration"`
	ConfidenceDip    float64 `json:"confidence_dip"`
	MaxMergeGap      float64 `json:"max_merge_gap"`

	// Onset detection
	OnsetDelta float64 `json:"onset_delta"`

	// Quantization
	GridSubdivisions  int     `json:"grid_subdivisions"`
	SnapTolerance     float64 `json:"snap_tolerance"`
	MinOnsetsForTempo int     `json:"min_onsets_for_tempo"`
}

// DefaultConfig returns the parameters tuned for hummed or sung melody
// at a 16 kHz pipeline rate with a 10 ms pitch hop.
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		NoiseGateDB: -40,

		Hop: 160, // 10ms at 16kHz

		ConfidenceThreshold: 0.5,
		MedianFilterSize:    5,
		MinVoicedDuration:   0.03,
		Smoothing:           SmoothingMedian,

		PitchChangeCents: 80,
		MinNoteDuration:  0.08,
		ConfidenceDip:    0.3,
		MaxMergeGap:      0.1,

		OnsetDelta: 0.05,

		GridSubdivisions:  4, // 16th notes
		SnapTolerance:     0.4,
		MinOnsetsForTempo: 4,
	}
}

// HopTime returns the contour hop interval in seconds.
func (c Config) HopTime() float64 {
	return float64(c.Hop) / float64(c.SampleRate)
}

// LoadConfigJSON reads a config JSON file applied on top of defaults.
func LoadConfigJSON(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be > 0, got %d", c.SampleRate)
	}
	if c.Hop <= 0 {
		return fmt.Errorf("hop must be > 0, got %d", c.Hop)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %g", c.ConfidenceThreshold)
	}
	if c.MedianFilterSize < 1 {
		return fmt.Errorf("median_filter_size must be >= 1, got %d", c.MedianFilterSize)
	}
	if c.MinNoteDuration <= 0 {
		return fmt.Errorf("min_note_duration must be > 0, got %g", c.MinNoteDuration)
	}
	if c.GridSubdivisions < 1 {
		return fmt.Errorf("grid_subdivisions must be >= 1, got %d", c.GridSubdivisions)
	}
	if c.SnapTolerance < 0 || c.SnapTolerance > 0.5 {
		return fmt.Errorf("snap_tolerance must be in [0,0.5], got %g", c.SnapTolerance)
	}
	return nil
}
