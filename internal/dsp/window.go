// Package dsp turns a decoded signal into the data plotted on each frame:
// a decimated waveform window around the playback cursor and its
// smoothed, normalized magnitude spectrum.
package dsp

import (
	"fmt"
	"math"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// DecimationMode selects how each display bucket is reduced to one point.
type DecimationMode int

const (
	// DecimatePeak keeps the sample with the largest magnitude in each bucket,
	// so short transients stay visible.
	DecimatePeak DecimationMode = iota

	// DecimateNearest keeps the first sample of each bucket.
	DecimateNearest

	// DecimateAverage keeps the bucket mean.
	DecimateAverage
)

// String returns the configuration name of the mode.
func (m DecimationMode) String() string {
	switch m {
	case DecimatePeak:
		return "peak"
	case DecimateNearest:
		return "nearest"
	case DecimateAverage:
		return "average"
	default:
		return "unknown"
	}
}

// ParseDecimationMode converts a configuration name into a DecimationMode.
func ParseDecimationMode(name string) (DecimationMode, error) {
	switch name {
	case "peak", "":
		return DecimatePeak, nil
	case "nearest":
		return DecimateNearest, nil
	case "average":
		return DecimateAverage, nil
	default:
		return DecimatePeak, fmt.Errorf("unknown decimation mode %q", name)
	}
}

// Extract returns the display window of samples centered on cursorSec,
// decimated to at most budget points using peak decimation.
//
// The nominal window is round(windowMs/1000*sampleRate) samples long. Parts of
// it that fall outside the buffer are zero, so the x axis keeps the same scale
// at the start and end of a track.
func Extract(samples []float64, sampleRate int, cursorSec, windowMs float64, budget int) (domain.DisplayWindow, error) {
	return extract(samples, sampleRate, cursorSec, windowMs, budget, DecimatePeak)
}

// Extractor is a configured window extractor.
// The zero value is not usable; create one with NewExtractor.
type Extractor struct {
	windowMs float64
	budget   int
	mode     DecimationMode
}

// NewExtractor creates an extractor for a fixed window duration and point budget.
func NewExtractor(windowMs float64, budget int, mode DecimationMode) *Extractor {
	return &Extractor{
		windowMs: windowMs,
		budget:   budget,
		mode:     mode,
	}
}

// WindowMs returns the configured window duration.
func (e *Extractor) WindowMs() float64 {
	return e.windowMs
}

// Extract computes the window for one frame.
func (e *Extractor) Extract(samples []float64, sampleRate int, cursorSec float64) (domain.DisplayWindow, error) {
	return extract(samples, sampleRate, cursorSec, e.windowMs, e.budget, e.mode)
}

// Overview decimates the entire signal to the extractor's budget.
// It is used for the static waveform shown while nothing is playing.
func (e *Extractor) Overview(samples []float64, sampleRate int) (domain.DisplayWindow, error) {
	if err := validateWindow(sampleRate, e.windowMs, e.budget); err != nil {
		return domain.DisplayWindow{}, err
	}
	n := len(samples)
	w := domain.DisplayWindow{
		StartSample: 0,
		SampleCount: n,
		Samples:     samples,
	}
	w.Points = decimate(samples, 0, sampleRate, e.budget, e.mode)
	return w, nil
}

func validateWindow(sampleRate int, windowMs float64, budget int) error {
	switch {
	case sampleRate <= 0:
		return domain.NewInvalidWindowError(sampleRate, windowMs, budget, "sample rate must be positive")
	case math.IsNaN(windowMs) || math.IsInf(windowMs, 0) || windowMs <= 0:
		return domain.NewInvalidWindowError(sampleRate, windowMs, budget, "window duration must be positive")
	case budget <= 0:
		return domain.NewInvalidWindowError(sampleRate, windowMs, budget, "point budget must be positive")
	}
	return nil
}

func extract(samples []float64, sampleRate int, cursorSec, windowMs float64, budget int, mode DecimationMode) (domain.DisplayWindow, error) {
	if err := validateWindow(sampleRate, windowMs, budget); err != nil {
		return domain.DisplayWindow{}, err
	}
	if math.IsNaN(cursorSec) || math.IsInf(cursorSec, 0) {
		return domain.DisplayWindow{}, domain.NewInvalidWindowError(sampleRate, windowMs, budget, "cursor is not finite")
	}

	count := int(math.Round(windowMs / 1000 * float64(sampleRate)))
	if count < 1 {
		count = 1
	}
	center := int(math.Round(cursorSec * float64(sampleRate)))
	start := center - count/2

	window := make([]float64, count)
	// copy the overlap of [start, start+count) and [0, len(samples))
	lo := max(start, 0)
	hi := min(start+count, len(samples))
	if lo < hi {
		copy(window[lo-start:], samples[lo:hi])
	}

	return domain.DisplayWindow{
		StartSample: start,
		SampleCount: count,
		Points:      decimate(window, 0, sampleRate, budget, mode),
		Samples:     window,
	}, nil
}

// decimate reduces window to at most budget points. Bucket i covers
// [i*n/budget, (i+1)*n/budget), which depends only on n and budget, so the
// same input always yields the same buckets.
func decimate(window []float64, offset, sampleRate, budget int, mode DecimationMode) []domain.Point {
	n := len(window)
	msPerSample := 1000 / float64(sampleRate)

	if n <= budget {
		points := make([]domain.Point, n)
		for i, v := range window {
			points[i] = domain.Point{X: float64(offset+i) * msPerSample, Y: v}
		}
		return points
	}

	points := make([]domain.Point, budget)
	for i := 0; i < budget; i++ {
		lo := i * n / budget
		hi := (i + 1) * n / budget
		if hi <= lo {
			hi = lo + 1
		}
		bucket := window[lo:hi]

		idx := lo
		var y float64
		switch mode {
		case DecimateNearest:
			y = bucket[0]
		case DecimateAverage:
			var sum float64
			for _, v := range bucket {
				sum += v
			}
			y = sum / float64(len(bucket))
			idx = (lo + hi - 1) / 2
		default:
			best := 0
			for j, v := range bucket {
				if math.Abs(v) > math.Abs(bucket[best]) {
					best = j
				}
			}
			y = bucket[best]
			idx = lo + best
		}
		points[i] = domain.Point{X: float64(offset+idx) * msPerSample, Y: y}
	}
	return points
}
