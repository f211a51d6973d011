// Package widgets provides custom Fyne widgets for the revscope analyzer.
package widgets

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
	"github.com/tejashwikalptaru/revscope/internal/render"
)

// Scope is the two-channel display widget. It hosts a render.Surface and
// shows its front buffer through a raster.
//
// Scope implements ports.RenderSurface by delegating to the surface and
// scheduling a raster refresh after every completed frame, so the animator
// can draw into it directly.
type Scope struct {
	widget.BaseWidget

	surface *render.Surface
	raster  *canvas.Raster
	minSize fyne.Size
}

// NewScope creates a scope widget around surface.
func NewScope(surface *render.Surface, minSize fyne.Size) *Scope {
	s := &Scope{
		surface: surface,
		minSize: minSize,
	}
	s.raster = canvas.NewRaster(s.draw)
	s.ExtendBaseWidget(s)
	return s
}

// CreateRenderer implements fyne.Widget.
func (s *Scope) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

// MinSize returns the smallest size the axes stay readable at.
func (s *Scope) MinSize() fyne.Size {
	return s.minSize
}

// draw is the raster generator. A size change resizes the surface and redraws
// the current traces against a fresh background.
func (s *Scope) draw(w, h int) image.Image {
	s.surface.Resize(w, h)
	if !s.surface.Captured() {
		s.surface.Redraw()
	}
	return s.surface.Front()
}

// CaptureBackground implements ports.RenderSurface.
func (s *Scope) CaptureBackground() {
	s.surface.CaptureBackground()
	s.refresh()
}

// UpdateLines implements ports.RenderSurface.
func (s *Scope) UpdateLines(waveform, spectrum []domain.Point) error {
	if err := s.surface.UpdateLines(waveform, spectrum); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// SetWaveLimits implements ports.RenderSurface.
func (s *Scope) SetWaveLimits(windowMs float64) {
	s.surface.SetWaveLimits(windowMs)
}

// SetOverview implements ports.RenderSurface.
func (s *Scope) SetOverview(durationMs float64) {
	s.surface.SetOverview(durationMs)
}

// SetSpectrumLimits implements ports.RenderSurface.
func (s *Scope) SetSpectrumLimits(minHz, maxHz float64) {
	s.surface.SetSpectrumLimits(minHz, maxHz)
}

// Front implements ports.RenderSurface.
func (s *Scope) Front() image.Image {
	return s.surface.Front()
}

// Clear removes both traces, keeping the axes.
func (s *Scope) Clear() {
	s.surface.Reset()
	s.refresh()
}

// refresh asks Fyne to pull the new frame. Frames may be completed off the
// UI goroutine (end-of-track overview), so the refresh goes through fyne.Do.
func (s *Scope) refresh() {
	fyne.Do(s.raster.Refresh)
}

var _ ports.RenderSurface = (*Scope)(nil)
