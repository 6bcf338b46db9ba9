package drums

// Config holds every tunable threshold in the percussion classifier.
type Config struct {
	SampleRate int     `json:"sample_rate"`
	OnsetHop   int     `json:"onset_hop"`
	OnsetDelta float64 `json:"onset_delta"`

	// Per-hit analysis window around each onset, in seconds.
	WindowPre  float64 `json:"window_pre"`
	WindowPost float64 `json:"window_post"`

	// Amplitude gate: hits whose window peaks below this are discarded.
	MinAmplitudeDB float64 `json:"min_amplitude_db"`

	// Classification thresholds.
	KickCentroidMax    float64 `json:"kick_centroid_max"`    // Hz
	HiHatCentroidMin   float64 `json:"hihat_centroid_min"`   // Hz
	RolloffNyquistFrac float64 `json:"rolloff_nyquist_frac"` // snare/kick split

	// Hi-hat open/closed decay analysis.
	HiHatDecayMS float64 `json:"hihat_decay_ms"`
	HiHatDecayDB float64 `json:"hihat_decay_db"`

	// Grid quantization.
	GridSubdivisions  int     `json:"grid_subdivisions"`
	SnapTolerance     float64 `json:"snap_tolerance"`
	MinOnsetsForTempo int     `json:"min_onsets_for_tempo"`

	// Fixed note duration per hit at the output sink, in seconds.
	HitDuration float64 `json:"hit_duration"`
}

// DefaultConfig returns the parameters tuned for beatboxing at 16 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		OnsetHop:   160,
		OnsetDelta: 0.05,

		WindowPre:  0.05,
		WindowPost: 0.1,

		MinAmplitudeDB: -30,

		KickCentroidMax:    200,
		HiHatCentroidMin:   5000,
		RolloffNyquistFrac: 0.6,

		HiHatDecayMS: 30,
		HiHatDecayDB: -20,

		GridSubdivisions:  4,
		SnapTolerance:     0.4,
		MinOnsetsForTempo: 4,

		HitDuration: 0.05,
	}
}
