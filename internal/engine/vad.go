package engine

import (
	"math"
	"time"
)

const (
	sampleRate = 16000

	// vadWindow is the silence-classification granularity (10 ms).
	vadWindow = sampleRate / 100

	// vadGate is the RMS level below which a window counts as silence.
	vadGate = 0.0125
)

// trimSilence collapses silence runs longer than minSilence down to
// minSilence, so long pauses do not stretch inference while natural
// pauses survive as-is. A non-positive threshold disables trimming.
func trimSilence(samples []float32, minSilence time.Duration) []float32 {
	if minSilence <= 0 || len(samples) < vadWindow {
		return samples
	}

	keepRun := int(minSilence.Seconds() * sampleRate)
	out := make([]float32, 0, len(samples))

	runStart := -1
	flushRun := func(end int) {
		if runStart < 0 {
			return
		}
		run := end - runStart
		if run > keepRun {
			run = keepRun
		}
		out = append(out, samples[runStart:runStart+run]...)
		runStart = -1
	}

	for off := 0; off < len(samples); off += vadWindow {
		end := off + vadWindow
		if end > len(samples) {
			end = len(samples)
		}
		if windowRMS(samples[off:end]) < vadGate {
			if runStart < 0 {
				runStart = off
			}
			continue
		}
		flushRun(off)
		out = append(out, samples[off:end]...)
	}
	flushRun(len(samples))

	return out
}

func windowRMS(window []float32) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range window {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(window)))
}
