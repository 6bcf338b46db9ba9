// Command hum2midi transcribes a hummed or sung melody from a WAV file
// into a MIDI file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/algo-transcribe/internal/wavutil"
	"github.com/cwbudde/algo-transcribe/midifile"
	"github.com/cwbudde/algo-transcribe/pitchest"
	"github.com/cwbudde/algo-transcribe/transcribe"
)

func main() {
	inPath := flag.String("in", "", "Input WAV file")
	outPath := flag.String("out", "melody.mid", "Output MIDI file")
	configPath := flag.String("config", "", "Optional pipeline config JSON")
	program := flag.Int("program", 0, "General MIDI program for the melody track")
	timeout := flag.Duration("timeout", 2*time.Minute, "Pitch estimation timeout")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: hum2midi -in <audio.wav> [-out melody.mid] [-config cfg.json]")
		os.Exit(1)
	}

	cfg := transcribe.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = transcribe.LoadConfigJSON(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	signal, err := wavutil.ReadMonoAt(*inPath, cfg.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}

	estimator := pitchest.New()
	estimator.Hop = cfg.Hop

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := transcribe.New(estimator, cfg).Run(ctx, signal, cfg.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transcribe: %v\n", err)
		os.Exit(1)
	}

	s := midifile.BuildMelody(result.Notes, result.Tempo.BPM, uint8(*program))
	if err := s.WriteFile(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d notes, key %d %s, %.1f BPM (reliable=%v)\n",
		*outPath, len(result.Notes), result.Key.Root, result.Key.Mode,
		result.Tempo.BPM, result.Tempo.Reliable)
}
