// Command beat2midi converts beatboxing audio from a WAV file into a
// drum-track MIDI file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-transcribe/drums"
	"github.com/cwbudde/algo-transcribe/internal/wavutil"
	"github.com/cwbudde/algo-transcribe/midifile"
)

func main() {
	inPath := flag.String("in", "", "Input WAV file")
	outPath := flag.String("out", "drums.mid", "Output MIDI file")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: beat2midi -in <audio.wav> [-out drums.mid]")
		os.Exit(1)
	}

	cfg := drums.DefaultConfig()

	signal, err := wavutil.ReadMonoAt(*inPath, cfg.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}

	hits, err := drums.NewClassifier(cfg).Classify(signal, cfg.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "classify: %v\n", err)
		os.Exit(1)
	}

	tempo := drums.EstimateTempo(hits, cfg)
	hits = drums.Quantize(hits, tempo, cfg)

	s := midifile.BuildDrums(hits, tempo.BPM, cfg.HitDuration)
	if err := s.WriteFile(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d hits, %.1f BPM (reliable=%v)\n", *outPath, len(hits), tempo.BPM, tempo.Reliable)
}
