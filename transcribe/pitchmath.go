package transcribe

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// hzToMidi converts a frequency to a continuous MIDI note number.
// Nonpositive frequencies map to 0 (no pitch).
func hzToMidi(hz float64) float64 {
	if hz <= 0 {
		return 0
	}
	return 69 + 12*math.Log2(hz/440.0)
}

// midiToHz converts a MIDI note number to frequency in Hz.
func midiToHz(midi float64) float64 {
	const a4Freq = 440.0
	const a4Note = 69
	return a4Freq * pow2Approx((midi-a4Note)/12.0)
}

func pow2Approx(x float64) float64 {
	const ln2 = 0.69314718055994530942
	return float64(approx.FastExp(float32(x * ln2)))
}

// centsBetween returns the pitch distance from hz2 to hz1 in cents.
// Either argument nonpositive yields 0.
func centsBetween(hz1, hz2 float64) float64 {
	if hz1 <= 0 || hz2 <= 0 {
		return 0
	}
	return 1200 * math.Log2(hz1/hz2)
}

// roundedSemitone returns the nearest integer MIDI note for a frequency.
func roundedSemitone(hz float64) int {
	return int(math.Round(hzToMidi(hz)))
}
