// Package domain contains core models and logic with no external dependencies.
// This package defines the fundamental entities of the revscope analyzer.
package domain

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AudioBuffer is a decoded audio signal.
// Samples are planar, one slice per channel, normalized to [-1, 1].
//
// A buffer is immutable once constructed: processing operations return new
// buffers and the visualization code only reads from it.
type AudioBuffer struct {
	// Channels holds the planar sample data. All channels have the same length.
	Channels [][]float64

	// SampleRate in Hz, always positive for a valid buffer
	SampleRate int

	// BitDepth of the source encoding (16, 24, ...)
	BitDepth int

	// SourcePath is the file the buffer was decoded from
	SourcePath string

	// Format is the lower-case container format (mp3, wav, flac, ogg)
	Format string

	monoOnce sync.Once
	mono     []float64
}

// NewAudioBuffer creates a buffer from planar channel data.
func NewAudioBuffer(channels [][]float64, sampleRate, bitDepth int, sourcePath, format string) *AudioBuffer {
	return &AudioBuffer{
		Channels:   channels,
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		SourcePath: sourcePath,
		Format:     format,
	}
}

// ChannelCount returns the number of channels.
func (b *AudioBuffer) ChannelCount() int {
	return len(b.Channels)
}

// Frames returns the number of sample frames (samples per channel).
func (b *AudioBuffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length of the buffer.
func (b *AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Mono returns the per-frame average of all channels.
// The result is computed once and shared; callers must not modify it.
func (b *AudioBuffer) Mono() []float64 {
	b.monoOnce.Do(func() {
		switch len(b.Channels) {
		case 0:
			b.mono = nil
		case 1:
			b.mono = b.Channels[0]
		default:
			n := b.Frames()
			mono := make([]float64, n)
			scale := 1.0 / float64(len(b.Channels))
			for _, ch := range b.Channels {
				for i := 0; i < n; i++ {
					mono[i] += ch[i]
				}
			}
			for i := range mono {
				mono[i] *= scale
			}
			b.mono = mono
		}
	})
	return b.mono
}

// AudioMetadata describes a buffer for the SIGNAL PARAMETERS panel.
type AudioMetadata struct {
	FileName   string
	Duration   time.Duration
	SampleRate int
	Channels   int
	BitDepth   int
	// BitrateKbps is the uncompressed PCM bitrate
	BitrateKbps float64
	// Format is the upper-case container format (MP3, WAV, ...)
	Format string

	// Tag fields, empty when the file carries no tags
	Title  string
	Artist string
	Album  string
}

// MetadataFor derives the metadata that can be computed from the buffer alone.
func MetadataFor(b *AudioBuffer) AudioMetadata {
	format := b.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(b.SourcePath), ".")
	}
	return AudioMetadata{
		FileName:    filepath.Base(b.SourcePath),
		Duration:    b.Duration(),
		SampleRate:  b.SampleRate,
		Channels:    b.ChannelCount(),
		BitDepth:    b.BitDepth,
		BitrateKbps: float64(b.SampleRate*b.ChannelCount()*b.BitDepth) / 1000,
		Format:      strings.ToUpper(format),
	}
}

// Point is one vertex of a plotted line in data coordinates.
type Point struct {
	X float64
	Y float64
}

// DisplayWindow is the slice of signal shown for one frame.
type DisplayWindow struct {
	// StartSample is the nominal first sample index. It is negative when the
	// window hangs over the start of the buffer.
	StartSample int

	// SampleCount is the nominal window length in samples, padding included.
	SampleCount int

	// Points are the decimated (x=ms from window start, y=amplitude) pairs.
	Points []Point

	// Samples is the zero-padded nominal window, SampleCount long.
	Samples []float64
}

// Spectrum is a magnitude spectrum ready for display.
// X is frequency in Hz, Y is magnitude normalized to [0, 1].
type Spectrum struct {
	Points []Point
}

// AnimatorState is the state of the frame animator.
type AnimatorState int

const (
	// AnimatorStopped means no ticks are processed
	AnimatorStopped AnimatorState = iota

	// AnimatorRunning means each tick renders a frame
	AnimatorRunning

	// AnimatorPaused means ticks are suspended and the last frame stays on screen
	AnimatorPaused
)

// String returns a human-readable representation of the animator state.
func (s AnimatorState) String() string {
	switch s {
	case AnimatorStopped:
		return "stopped"
	case AnimatorRunning:
		return "running"
	case AnimatorPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusStopped indicates playback is stopped
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Preferences contain user preferences and settings.
type Preferences struct {
	// Volume is the saved volume level (0.0 to 1.0)
	Volume float64

	// Speed is the last used speed factor (0.5 to 2.0)
	Speed float64

	// LastFolder is the directory of the last opened file
	LastFolder string

	// ExportFolder is where reversed files are written, empty for the temp dir
	ExportFolder string

	// Decimation is the waveform decimation mode name
	Decimation string
}

// Speed limits for the timebase control.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
)

// ExportFileName returns the file name a reversal of sourcePath is exported
// under: reversed_<name>.wav, or reversed_signal.wav without a source.
func ExportFileName(sourcePath string) string {
	name := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "signal"
	}
	return "reversed_" + name + ".wav"
}
