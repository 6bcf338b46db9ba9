// Package drums classifies percussive onsets into drum hits. It is the
// parallel, pitch-independent path of the transcription pipeline: onsets
// are detected on the raw signal, gated by amplitude, and classified by
// spectral shape.
package drums

import (
	"log"
	"math"

	"github.com/cwbudde/algo-transcribe/analysis"
	"github.com/cwbudde/algo-transcribe/dsp"
	"github.com/cwbudde/algo-transcribe/transcribe"
)

// HitClass is the classified drum voice of a percussive onset.
type HitClass int

const (
	Kick HitClass = iota
	Snare
	ClosedHiHat
	OpenHiHat
)

func (c HitClass) String() string {
	switch c {
	case Kick:
		return "kick"
	case Snare:
		return "snare"
	case ClosedHiHat:
		return "closed_hihat"
	case OpenHiHat:
		return "open_hihat"
	}
	return "unknown"
}

// GMNote returns the General MIDI drum-map note for the class.
func (c HitClass) GMNote() int {
	switch c {
	case Snare:
		return 38
	case ClosedHiHat:
		return 42
	case OpenHiHat:
		return 46
	default:
		return 36 // kick
	}
}

// Hit is one classified percussive onset.
type Hit struct {
	Time  float64
	Class HitClass
}

// FeatureProvider supplies the spectral features classification needs.
// The default is backed by the analysis package; tests substitute fakes.
type FeatureProvider interface {
	Centroid(window []float64, sampleRate int) float64
	Rolloff(window []float64, sampleRate int) float64
	RMSEnvelope(x []float64, frameLen, hop int) []float64
}

type analysisFeatures struct{}

func (analysisFeatures) Centroid(w []float64, sr int) float64 { return analysis.Centroid(w, sr) }
func (analysisFeatures) Rolloff(w []float64, sr int) float64  { return analysis.Rolloff(w, sr) }
func (analysisFeatures) RMSEnvelope(x []float64, frameLen, hop int) []float64 {
	return analysis.RMSEnvelope(x, frameLen, hop)
}

// Classifier converts a raw signal into classified drum hits.
type Classifier struct {
	cfg      Config
	features FeatureProvider
}

// NewClassifier returns a Classifier with the default analysis-backed
// feature provider.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg, features: analysisFeatures{}}
}

// NewClassifierWithFeatures injects a custom feature provider.
func NewClassifierWithFeatures(cfg Config, features FeatureProvider) *Classifier {
	return &Classifier{cfg: cfg, features: features}
}

// Classify detects onsets on the raw signal and classifies each surviving
// hit. Hits whose window peak falls below the amplitude floor are
// rejected before any spectral analysis. An empty hit list is a valid
// result for percussion, unlike the melody path.
func (c *Classifier) Classify(signal []float64, sampleRate int) ([]Hit, error) {
	if len(signal) == 0 {
		return nil, transcribe.ErrEmptyAudio
	}

	onsets := analysis.Onsets(signal, sampleRate, c.cfg.OnsetHop, c.cfg.OnsetDelta)
	log.Printf("[percussion] onsets: %d", len(onsets))

	var hits []Hit
	for _, t := range onsets {
		window := c.hitWindow(signal, sampleRate, t)
		if len(window) == 0 {
			continue
		}
		if analysis.PeakDB(window) < c.cfg.MinAmplitudeDB {
			continue
		}
		hits = append(hits, Hit{Time: t, Class: c.classifyWindow(window, sampleRate)})
	}
	log.Printf("[percussion] %d hits after amplitude gate (from %d onsets)", len(hits), len(onsets))
	return hits, nil
}

// hitWindow extracts the fixed pre/post window around an onset, clamped
// to the signal bounds.
func (c *Classifier) hitWindow(signal []float64, sampleRate int, t float64) []float64 {
	center := int(t * float64(sampleRate))
	lo := center - int(c.cfg.WindowPre*float64(sampleRate))
	if lo < 0 {
		lo = 0
	}
	hi := center + int(c.cfg.WindowPost*float64(sampleRate))
	if hi > len(signal) {
		hi = len(signal)
	}
	if hi <= lo {
		return nil
	}
	out := make([]float64, hi-lo)
	copy(out, signal[lo:hi])
	return out
}

// classifyWindow maps the spectral shape of a hit window to a drum voice.
// Low centroid is kick energy; very high centroid enters hi-hat
// sub-classification; the ambiguous middle is split by rolloff into snare
// (broadband noise reaching high) versus a weak kick.
func (c *Classifier) classifyWindow(window []float64, sampleRate int) HitClass {
	centroid := c.features.Centroid(window, sampleRate)

	switch {
	case centroid < c.cfg.KickCentroidMax:
		return Kick
	case centroid > c.cfg.HiHatCentroidMin:
		return c.classifyHiHat(window, sampleRate)
	default:
		rolloff := c.features.Rolloff(window, sampleRate)
		if rolloff > float64(sampleRate)*0.5*c.cfg.RolloffNyquistFrac {
			return Snare
		}
		return Kick
	}
}

// classifyHiHat separates open from closed hi-hat by the decay time of
// the high-passed hit: the RMS envelope is measured from its peak to the
// point it drops HiHatDecayDB below. A hit that never decays below the
// threshold is, perceptually, sustained, so it defaults to open.
func (c *Classifier) classifyHiHat(window []float64, sampleRate int) HitClass {
	nyquist := float64(sampleRate) / 2
	cutoff := c.cfg.HiHatCentroidMin
	if cutoff >= nyquist {
		cutoff = nyquist - 1
	}
	if cutoff <= 0 {
		return ClosedHiHat
	}

	hp := dsp.NewHighpass4(cutoff, float64(sampleRate))
	filtered := hp.ProcessBlock(window)

	frameLen := int(float64(sampleRate) * 0.005) // 5ms frames
	if frameLen < 64 {
		frameLen = 64
	}
	hop := frameLen / 2
	env := c.features.RMSEnvelope(filtered, frameLen, hop)
	if len(env) == 0 {
		return ClosedHiHat
	}

	peakIdx, peak := 0, 0.0
	for i, v := range env {
		if v > peak {
			peak = v
			peakIdx = i
		}
	}
	if peak <= 0 {
		return ClosedHiHat
	}

	threshold := peak * math.Pow(10, c.cfg.HiHatDecayDB/20)
	for i := peakIdx; i < len(env); i++ {
		if env[i] < threshold {
			decayMS := float64((i-peakIdx)*hop) / float64(sampleRate) * 1000
			if decayMS < c.cfg.HiHatDecayMS {
				return ClosedHiHat
			}
			return OpenHiHat
		}
	}
	return OpenHiHat
}
