package transcribe

import "sort"

// FilterContour denoises a raw pitch contour: low-confidence frames are
// zeroed, each voiced span is smoothed in isolation, and spans that end up
// shorter than the minimum voiced duration are removed entirely.
//
// The order is deliberate: smoothing before culling can rescue marginal
// spans, while culling first would discard spans that smoothing would have
// cleaned. Smoothing never crosses a span boundary because boundaries are
// attack/release points.
//
// The input is not modified; a fresh contour is returned.
func FilterContour(frames []PitchFrame, cfg Config) []PitchFrame {
	out := make([]PitchFrame, len(frames))
	copy(out, frames)

	for i := range out {
		if out[i].Confidence < cfg.ConfidenceThreshold {
			out[i].FreqHz = 0
		}
	}

	switch cfg.Smoothing {
	case SmoothingMajority:
		for _, span := range FindSpans(out) {
			majorityVoteSpan(out, span)
		}
	default:
		kernel := cfg.MedianFilterSize
		if kernel%2 == 0 {
			kernel++
		}
		for _, span := range FindSpans(out) {
			if span.Len() < kernel {
				continue
			}
			medianFilterSpan(out, span, kernel)
		}
	}

	hop := hopFromTimes(out)
	for _, span := range FindSpans(out) {
		if float64(span.Len())*hop < cfg.MinVoicedDuration {
			for i := span.Start; i < span.End; i++ {
				out[i].FreqHz = 0
			}
		}
	}

	return out
}

// FindSpans returns the maximal contiguous runs of voiced frames.
func FindSpans(frames []PitchFrame) []Span {
	var spans []Span
	inSpan := false
	start := 0
	for i, f := range frames {
		voiced := f.FreqHz > 0
		switch {
		case voiced && !inSpan:
			start = i
			inSpan = true
		case !voiced && inSpan:
			spans = append(spans, Span{Start: start, End: i})
			inSpan = false
		}
	}
	if inSpan {
		spans = append(spans, Span{Start: start, End: len(frames)})
	}
	return spans
}

// medianFilterSpan applies a centered median filter of odd kernel size to
// the frequencies inside one span, zero-padding at the span edges.
func medianFilterSpan(frames []PitchFrame, span Span, kernel int) {
	n := span.Len()
	src := make([]float64, n)
	for i := 0; i < n; i++ {
		src[i] = frames[span.Start+i].FreqHz
	}

	half := kernel / 2
	window := make([]float64, 0, kernel)
	for i := 0; i < n; i++ {
		window = window[:0]
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= n {
				window = append(window, 0)
			} else {
				window = append(window, src[j])
			}
		}
		frames[span.Start+i].FreqHz = median(window)
	}
}

// majorityVoteSpan snaps each frame whose rounded semitone disagrees with
// the modal semitone of its neighborhood to the modal pitch. Looking past
// immediate neighbors gives a stable anchor against single-frame flicker.
func majorityVoteSpan(frames []PitchFrame, span Span) {
	const radius = 2
	n := span.Len()
	semis := make([]int, n)
	for i := 0; i < n; i++ {
		semis[i] = roundedSemitone(frames[span.Start+i].FreqHz)
	}

	for i := 0; i < n; i++ {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius + 1
		if hi > n {
			hi = n
		}

		counts := map[int]int{}
		for j := lo; j < hi; j++ {
			counts[semis[j]]++
		}
		mode, modeCount := semis[i], 0
		for s, c := range counts {
			if c > modeCount || (c == modeCount && s < mode) {
				mode, modeCount = s, c
			}
		}
		if semis[i] != mode {
			frames[span.Start+i].FreqHz = midiToHz(float64(mode))
		}
	}
}

// median sorts its argument in place.
func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return 0.5 * (v[mid-1] + v[mid])
}

// hopFromTimes infers the contour hop interval from frame timestamps,
// defaulting to 10ms for degenerate contours.
func hopFromTimes(frames []PitchFrame) float64 {
	if len(frames) > 1 {
		if dt := frames[1].Time - frames[0].Time; dt > 0 {
			return dt
		}
	}
	return 0.01
}

// meanConfidence is the arithmetic mean of frame confidences in [lo, hi).
func meanConfidence(frames []PitchFrame, lo, hi int) float64 {
	if hi <= lo {
		return 0
	}
	var sum float64
	for i := lo; i < hi; i++ {
		sum += frames[i].Confidence
	}
	return sum / float64(hi-lo)
}

// medianFrequency is the median of frame frequencies in [lo, hi).
func medianFrequency(frames []PitchFrame, lo, hi int) float64 {
	if hi <= lo {
		return 0
	}
	v := make([]float64, hi-lo)
	for i := lo; i < hi; i++ {
		v[i-lo] = frames[i].FreqHz
	}
	return median(v)
}
