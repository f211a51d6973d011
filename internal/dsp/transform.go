package dsp

import (
	"math"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"gonum.org/v1/gonum/interp"
)

// Reverse returns a new buffer with the sample order of every channel reversed.
func Reverse(buf *domain.AudioBuffer) *domain.AudioBuffer {
	channels := make([][]float64, len(buf.Channels))
	for c, src := range buf.Channels {
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[len(src)-1-i] = v
		}
		channels[c] = dst
	}
	return domain.NewAudioBuffer(channels, buf.SampleRate, buf.BitDepth, buf.SourcePath, buf.Format)
}

// ChangeSpeed returns a buffer that plays factor times faster at the same
// sample rate. Pitch shifts with speed, like playing a tape faster.
func ChangeSpeed(buf *domain.AudioBuffer, factor float64) (*domain.AudioBuffer, error) {
	if math.IsNaN(factor) || factor < domain.MinSpeed || factor > domain.MaxSpeed {
		return nil, &domain.ValidationError{
			Field:   "speed",
			Value:   factor,
			Message: "must be between 0.5 and 2.0",
			Err:     domain.ErrInvalidSpeed,
		}
	}
	if factor == 1 {
		return buf, nil
	}
	out := int(math.Round(float64(buf.Frames()) / factor))
	return resample(buf, out, factor, buf.SampleRate), nil
}

// ResampleTo converts buf to sampleRate, keeping its duration and pitch.
func ResampleTo(buf *domain.AudioBuffer, sampleRate int) *domain.AudioBuffer {
	if sampleRate <= 0 || buf.SampleRate <= 0 || sampleRate == buf.SampleRate {
		return buf
	}
	step := float64(buf.SampleRate) / float64(sampleRate)
	out := int(math.Round(float64(buf.Frames()) / step))
	return resample(buf, out, step, sampleRate)
}

// resample builds out frames by linear interpolation, reading the source at
// step frames per output frame. Reads past the last frame hold its value.
func resample(buf *domain.AudioBuffer, out int, step float64, sampleRate int) *domain.AudioBuffer {
	frames := 0
	for _, src := range buf.Channels {
		frames = max(frames, len(src))
	}
	xs := make([]float64, frames)
	for i := range xs {
		xs[i] = float64(i)
	}

	channels := make([][]float64, len(buf.Channels))
	for c, src := range buf.Channels {
		dst := make([]float64, out)
		switch len(src) {
		case 0:
		case 1:
			for j := range dst {
				dst[j] = src[0]
			}
		default:
			var pl interp.PiecewiseLinear
			// Nodes are strictly increasing and there are at least two, so Fit cannot fail.
			_ = pl.Fit(xs[:len(src)], src)
			for j := range dst {
				dst[j] = pl.Predict(float64(j) * step)
			}
		}
		channels[c] = dst
	}
	return domain.NewAudioBuffer(channels, sampleRate, buf.BitDepth, buf.SourcePath, buf.Format)
}
