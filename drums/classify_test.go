package drums

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-transcribe/analysis"
	"github.com/cwbudde/algo-transcribe/transcribe"
)

// fakeFeatures returns fixed spectral features regardless of the window,
// isolating the decision tree from the DSP.
type fakeFeatures struct {
	centroid float64
	rolloff  float64
	env      []float64
}

func (f *fakeFeatures) Centroid(w []float64, sr int) float64 { return f.centroid }
func (f *fakeFeatures) Rolloff(w []float64, sr int) float64  { return f.rolloff }
func (f *fakeFeatures) RMSEnvelope(x []float64, frameLen, hop int) []float64 {
	if f.env != nil {
		return f.env
	}
	return analysis.RMSEnvelope(x, frameLen, hop)
}

func TestClassifyEmptySignal(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	_, err := c.Classify(nil, 16000)
	if !errors.Is(err, transcribe.ErrEmptyAudio) {
		t.Fatalf("err = %v, want ErrEmptyAudio", err)
	}
}

func TestClassifyQuietHitsAreGated(t *testing.T) {
	// Click train 30dB below full scale: every onset fails the -30dB
	// amplitude floor, so no hits survive, and that is not an error.
	cfg := DefaultConfig()
	sr := cfg.SampleRate
	signal := make([]float64, 2*sr)
	for i := 4000; i < len(signal); i += 8000 {
		signal[i] = 0.01 // -40 dBFS
	}

	hits, err := NewClassifier(cfg).Classify(signal, sr)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected all hits gated, got %d", len(hits))
	}
}

func TestClassifyLoudHitsSurvive(t *testing.T) {
	cfg := DefaultConfig()
	sr := cfg.SampleRate
	signal := make([]float64, 2*sr)
	// Short full-scale bursts rather than single samples, so the onset
	// detector and the feature window both see real energy.
	for start := 4000; start < len(signal)-200; start += 8000 {
		for i := 0; i < 200; i++ {
			signal[start+i] = 0.9 * math.Sin(2*math.Pi*100*float64(i)/float64(sr))
		}
	}

	hits, err := NewClassifier(cfg).Classify(signal, sr)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected loud hits to survive the gate")
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Time <= hits[i-1].Time {
			t.Fatalf("hit times not increasing at %d", i)
		}
	}
}

func TestClassifyWindowDecisionTree(t *testing.T) {
	cfg := DefaultConfig()
	window := make([]float64, 1024)

	cases := []struct {
		name     string
		features fakeFeatures
		want     HitClass
	}{
		{"low centroid is kick", fakeFeatures{centroid: 100}, Kick},
		{"mid centroid high rolloff is snare", fakeFeatures{centroid: 3000, rolloff: 6000}, Snare},
		{"mid centroid low rolloff is kick", fakeFeatures{centroid: 3000, rolloff: 2000}, Kick},
		{
			"high centroid fast decay is closed hihat",
			// Envelope drops below peak-20dB one frame after the peak:
			// 2.5ms of decay, under the 30ms threshold.
			fakeFeatures{centroid: 6000, env: []float64{1.0, 0.01, 0.01}},
			ClosedHiHat,
		},
		{
			"high centroid slow decay is open hihat",
			// 20 frames at half-frame hop is 50ms before the drop.
			fakeFeatures{centroid: 6000, env: sustainedEnvelope(20)},
			OpenHiHat,
		},
		{
			"high centroid no decay is open hihat",
			fakeFeatures{centroid: 6000, env: []float64{1.0, 1.0, 1.0, 1.0}},
			OpenHiHat,
		},
	}

	for _, tc := range cases {
		c := NewClassifierWithFeatures(cfg, &tc.features)
		if got := c.classifyWindow(window, cfg.SampleRate); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

// sustainedEnvelope holds the peak for n frames, then drops far below the
// decay threshold.
func sustainedEnvelope(n int) []float64 {
	env := make([]float64, n+1)
	for i := 0; i < n; i++ {
		env[i] = 1.0
	}
	env[n] = 0.001
	return env
}

func TestClassifyHiHatRealPath(t *testing.T) {
	// Exercises the high-pass filter and real RMS envelope rather than a
	// canned one. A 6kHz burst that stops quickly must read as closed; one
	// that sustains for the whole window must read as open.
	cfg := DefaultConfig()
	sr := cfg.SampleRate
	c := NewClassifier(cfg)

	n := int(0.15 * float64(sr)) // matches the pre+post hit window
	burst := make([]float64, n)
	for i := 0; i < n/10; i++ { // 15ms of tone, then silence
		burst[i] = math.Sin(2 * math.Pi * 6000 * float64(i) / float64(sr))
	}
	if got := c.classifyHiHat(burst, sr); got != ClosedHiHat {
		t.Fatalf("short burst classified as %v, want closed", got)
	}

	sustained := make([]float64, n)
	for i := range sustained {
		sustained[i] = math.Sin(2 * math.Pi * 6000 * float64(i) / float64(sr))
	}
	if got := c.classifyHiHat(sustained, sr); got != OpenHiHat {
		t.Fatalf("sustained tone classified as %v, want open", got)
	}
}

func TestHitClassStrings(t *testing.T) {
	cases := map[HitClass]string{
		Kick:        "kick",
		Snare:       "snare",
		ClosedHiHat: "closed_hihat",
		OpenHiHat:   "open_hihat",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", class, got, want)
		}
	}
}

func TestHitClassGMNotes(t *testing.T) {
	cases := map[HitClass]int{
		Kick:        36,
		Snare:       38,
		ClosedHiHat: 42,
		OpenHiHat:   46,
	}
	for class, want := range cases {
		if got := class.GMNote(); got != want {
			t.Errorf("%v.GMNote() = %d, want %d", class, got, want)
		}
	}
}
