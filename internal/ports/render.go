package ports

import (
	"image"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// RenderSurface owns the waveform and spectrum line artists and their shared
// drawing buffer.
//
// CaptureBackground must be called after any change to axis limits, size or
// decoration; UpdateLines draws against the last captured background.
type RenderSurface interface {
	// CaptureBackground performs a full draw of axes and decorations and
	// snapshots it, without the two lines.
	CaptureBackground()

	// UpdateLines replaces the line data in place, restores the background,
	// draws only the two lines and flips the buffer.
	UpdateLines(waveform, spectrum []domain.Point) error

	// SetWaveLimits sets the waveform x range (ms) and invalidates the background.
	SetWaveLimits(windowMs float64)

	// SetOverview sets the waveform x range to a whole track (ms) and
	// invalidates the background.
	SetOverview(durationMs float64)

	// SetSpectrumLimits sets the spectrum x range (Hz) and invalidates the background.
	SetSpectrumLimits(minHz, maxHz float64)

	// Front returns the most recently completed frame.
	Front() image.Image
}

// TickSource delivers periodic ticks to a single handler.
// Ticks are cooperative: a handler call completes before the next one starts.
type TickSource interface {
	// Start begins invoking fn on every tick. Starting a running source restarts it.
	Start(fn func())

	// Stop halts ticks. Calling Stop on a stopped source is a no-op.
	Stop()

	// Running reports whether ticks are being delivered.
	Running() bool
}
