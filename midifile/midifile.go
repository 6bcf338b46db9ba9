// Package midifile serializes transcription results to standard MIDI
// files. It is the output sink of the pipeline: the core hands it ordered
// note and hit lists and plays no further part.
package midifile

import (
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-transcribe/drums"
	"github.com/cwbudde/algo-transcribe/transcribe"
)

const ticksPerQuarter = 960

const drumChannel = 9

// event is a MIDI message at an absolute tick, kept sortable so note-offs
// precede note-ons on the same tick.
type event struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// BuildMelody builds a single-track SMF from quantized melody notes.
func BuildMelody(notes []transcribe.MidiNote, bpm float64, program uint8) *smf.SMF {
	events := make([]event, 0, 2*len(notes))
	for _, n := range notes {
		key := clampKey(n.Pitch)
		vel := clampVel(n.Velocity)
		events = append(events,
			event{tick: secondsToTicks(n.Start, bpm), msg: midi.NoteOn(0, key, vel)},
			event{tick: secondsToTicks(n.End, bpm), off: true, msg: midi.NoteOff(0, key)},
		)
	}
	return assemble(events, bpm, midi.ProgramChange(0, program))
}

// BuildDrums builds a drum-channel SMF from classified hits, each emitted
// as a fixed-duration note on the General MIDI drum map.
func BuildDrums(hits []drums.Hit, bpm float64, hitDuration float64) *smf.SMF {
	const velocity = 100
	events := make([]event, 0, 2*len(hits))
	for _, h := range hits {
		key := clampKey(h.Class.GMNote())
		events = append(events,
			event{tick: secondsToTicks(h.Time, bpm), msg: midi.NoteOn(drumChannel, key, velocity)},
			event{tick: secondsToTicks(h.Time+hitDuration, bpm), off: true, msg: midi.NoteOff(drumChannel, key)},
		)
	}
	return assemble(events, bpm, nil)
}

func assemble(events []event, bpm float64, setup midi.Message) *smf.SMF {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))
	if setup != nil {
		tr.Add(0, setup)
	}

	var cursor uint32
	for _, ev := range events {
		delta := ev.tick - cursor
		tr.Add(delta, ev.msg)
		cursor = ev.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	s.Add(tr)
	return s
}

// secondsToTicks converts an absolute time to ticks at the file tempo.
func secondsToTicks(t, bpm float64) uint32 {
	if t < 0 {
		t = 0
	}
	return uint32(math.Round(t * bpm / 60.0 * ticksPerQuarter))
}

func clampKey(k int) uint8 {
	if k < 0 {
		return 0
	}
	if k > 127 {
		return 127
	}
	return uint8(k)
}

func clampVel(v int) uint8 {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
