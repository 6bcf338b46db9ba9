package pitchest

import (
	"context"
	"errors"
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestEstimatePureTone(t *testing.T) {
	sr := 16000
	frames, err := New().Estimate(context.Background(), sine(220, sr, sr/2), sr)
	if err != nil {
		t.Fatalf("Estimate() error: %v", err)
	}
	if len(frames) == 0 {
		t.Fatal("no frames")
	}

	for _, f := range frames {
		if f.FreqHz == 0 {
			t.Fatalf("unvoiced frame at %f for a pure tone", f.Time)
		}
		if math.Abs(f.FreqHz-220) > 5 {
			t.Fatalf("frame at %f detected %f Hz, want near 220", f.Time, f.FreqHz)
		}
		if f.Confidence < 0.8 || f.Confidence > 1 {
			t.Fatalf("confidence %f outside expected range", f.Confidence)
		}
	}

	for i := 1; i < len(frames); i++ {
		if frames[i].Time <= frames[i-1].Time {
			t.Fatalf("frame times not increasing at %d", i)
		}
	}
}

func TestEstimateSilenceIsUnvoiced(t *testing.T) {
	sr := 16000
	frames, err := New().Estimate(context.Background(), make([]float64, sr/2), sr)
	if err != nil {
		t.Fatalf("Estimate() error: %v", err)
	}
	for _, f := range frames {
		if f.FreqHz != 0 || f.Confidence != 0 {
			t.Fatalf("silent frame at %f reported %f Hz, conf %f", f.Time, f.FreqHz, f.Confidence)
		}
	}
}

func TestEstimateShortInput(t *testing.T) {
	frames, err := New().Estimate(context.Background(), make([]float64, 100), 16000)
	if err != nil {
		t.Fatalf("Estimate() error: %v", err)
	}
	if frames != nil {
		t.Fatalf("got %d frames from sub-frame input, want none", len(frames))
	}
}

func TestEstimateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sr := 16000
	_, err := New().Estimate(ctx, sine(220, sr, sr/2), sr)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
