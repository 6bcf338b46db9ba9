package transcribe

import "github.com/cwbudde/algo-transcribe/analysis"

// DetectOnsets finds note-attack timestamps on the original signal.
// Harmonic separation suppresses exactly the transients onset detection
// needs, so this stage must never run on the harmonic stream.
func DetectOnsets(original []float64, cfg Config) []float64 {
	return analysis.Onsets(original, cfg.SampleRate, cfg.Hop, cfg.OnsetDelta)
}
