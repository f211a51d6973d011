// Package ports define interfaces for dependency inversion.
// These interfaces allow the core analyzer logic to remain independent of external frameworks.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// AudioProcessor decodes, transforms and exports audio buffers.
// This abstracts the codec libraries and allows for testing with mocks.
//
// Buffers are immutable: every transform returns a new buffer.
type AudioProcessor interface {
	// Load decodes an audio file into a buffer.
	//
	// Returns a *domain.DecodeError if the file cannot be opened or decoded.
	Load(path string) (*domain.AudioBuffer, error)

	// Reverse returns a copy of the buffer with the sample order reversed.
	Reverse(buf *domain.AudioBuffer) *domain.AudioBuffer

	// ChangeSpeed resamples the buffer so it plays factor times faster.
	// Pitch moves with speed. factor must be within domain.MinSpeed..domain.MaxSpeed.
	ChangeSpeed(buf *domain.AudioBuffer, factor float64) (*domain.AudioBuffer, error)

	// Metadata describes the buffer, including tags read from its source file.
	Metadata(buf *domain.AudioBuffer) domain.AudioMetadata

	// ExportWAV writes the buffer as 16-bit PCM WAV.
	// An empty path writes to the temp directory.
	//
	// Returns the path written.
	ExportWAV(buf *domain.AudioBuffer, path string) (string, error)

	// SupportedFormats returns the lower-case extensions Load accepts.
	SupportedFormats() []string
}

// PlaybackClock supplies the playback cursor to the frame animator.
//
// CurrentTime may be called from the UI thread while audio runs elsewhere;
// implementations must make it a cheap, lock-free read where possible.
type PlaybackClock interface {
	// CurrentTime returns the elapsed playback time in seconds.
	CurrentTime() float64

	// IsPlaying returns true while audio is being produced.
	IsPlaying() bool

	// AtEnd returns true once the whole buffer has been played.
	AtEnd() bool
}

// PlaybackEngine plays a single audio buffer.
//
// Implementations must be thread-safe.
type PlaybackEngine interface {
	PlaybackClock

	// Load replaces the current buffer. Any playback in progress is stopped.
	Load(buf *domain.AudioBuffer) error

	// Play starts playback from the beginning, or resumes if paused.
	Play() error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Stop stops playback and rewinds to the start.
	Stop() error

	// SetVolume sets the volume (0.0 to 1.0).
	SetVolume(volume float64) error

	// Duration returns the length of the loaded buffer.
	Duration() time.Duration

	// Status returns the current playback status.
	Status() domain.PlaybackStatus

	// Shutdown releases engine resources.
	Shutdown() error
}
