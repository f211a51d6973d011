// Package render draws the two-channel scope display into an off-screen
// RGBA buffer.
//
// The surface separates static decorations from the two traces. A full draw
// of borders, grid, ticks and labels happens only in CaptureBackground; each
// frame restores that snapshot, draws the traces and flips buffers.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
	"github.com/tejashwikalptaru/revscope/internal/style"
)

// axis maps data coordinates into a plot rectangle.
type axis struct {
	plot       image.Rectangle
	xMin, xMax float64
	yMin, yMax float64
	logX       bool
}

func (a axis) px(x float64) float64 {
	w := float64(a.plot.Dx() - 1)
	if a.logX {
		return float64(a.plot.Min.X) + (math.Log10(x)-math.Log10(a.xMin))/(math.Log10(a.xMax)-math.Log10(a.xMin))*w
	}
	return float64(a.plot.Min.X) + (x-a.xMin)/(a.xMax-a.xMin)*w
}

func (a axis) py(y float64) float64 {
	h := float64(a.plot.Dy() - 1)
	y = math.Max(a.yMin, math.Min(a.yMax, y))
	return float64(a.plot.Max.Y-1) - (y-a.yMin)/(a.yMax-a.yMin)*h
}

// Surface is the raster implementation of ports.RenderSurface.
//
// Line data is kept in two reusable slices. Front returns the last completed
// frame; UpdateLines writes into the back buffer and swaps.
type Surface struct {
	style   style.Style
	floorDB float64
	paint   painter

	mu         sync.Mutex
	width      int
	height     int
	background *image.RGBA
	front      *image.RGBA
	back       *image.RGBA
	captured   bool

	wave     axis
	spectrum axis
	overview bool

	waveLine     []domain.Point
	spectrumLine []domain.Point
}

// NewSurface creates a surface of the given pixel size.
// floorDB is the level shown at the bottom of the spectrum axis.
func NewSurface(st style.Style, width, height int, floorDB float64) *Surface {
	s := &Surface{
		style:   st,
		floorDB: floorDB,
		paint:   newPainter(),
		wave: axis{
			xMin: 0, xMax: 2000,
			yMin: st.Limits.WaveYMin, yMax: st.Limits.WaveYMax,
		},
		spectrum: axis{
			xMin: st.Limits.SpectrumMinHz, xMax: 22050,
			yMin: 0, yMax: st.Limits.SpectrumYMax,
			logX: true,
		},
	}
	s.resize(width, height)
	return s
}

// Size returns the current pixel size.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Resize changes the pixel size and invalidates the background.
// A no-op when the size is unchanged.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == s.width && height == s.height {
		return
	}
	s.resize(width, height)
}

func (s *Surface) resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	s.width, s.height = width, height
	r := image.Rect(0, 0, width, height)
	s.background = image.NewRGBA(r)
	s.front = image.NewRGBA(r)
	s.back = image.NewRGBA(r)
	s.captured = false
	s.layout()
}

// layout splits the surface into two stacked axes.
func (s *Surface) layout() {
	l := s.style.Layout
	half := s.height / 2
	s.wave.plot = plotRect(l.MarginLeft, l.MarginTop, s.width-l.MarginRight, half-l.MarginBottom-l.AxisGap/2)
	s.spectrum.plot = plotRect(l.MarginLeft, half+l.AxisGap/2+l.MarginTop, s.width-l.MarginRight, s.height-l.MarginBottom)
}

// plotRect is image.Rect without the coordinate swap: a rectangle that does
// not fit is empty and skipped by the drawing code.
func plotRect(x0, y0, x1, y1 int) image.Rectangle {
	if x1-x0 < 2 || y1-y0 < 2 {
		return image.Rectangle{}
	}
	return image.Rect(x0, y0, x1, y1)
}

// SetWaveLimits sets the waveform x range to [0, windowMs] with a cursor
// marker at its center. The background must be captured again.
func (s *Surface) SetWaveLimits(windowMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wave.xMax = windowMs
	s.overview = false
	s.captured = false
}

// SetOverview sets the waveform x range to a whole track, without the cursor
// marker. The background must be captured again.
func (s *Surface) SetOverview(durationMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wave.xMax = math.Max(durationMs, 1)
	s.overview = true
	s.captured = false
}

// SetSpectrumLimits sets the spectrum frequency range. The background must be
// captured again.
func (s *Surface) SetSpectrumLimits(minHz, maxHz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	minHz = math.Max(minHz, 1)
	if maxHz <= minHz {
		maxHz = minHz * 10
	}
	s.spectrum.xMin = minHz
	s.spectrum.xMax = maxHz
	s.captured = false
}

// Captured reports whether the background matches the current limits and size.
func (s *Surface) Captured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captured
}

// CaptureBackground draws all decorations and stores the result as the
// background. The front buffer shows the bare background afterwards.
func (s *Surface) CaptureBackground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureLocked()
}

func (s *Surface) captureLocked() {
	img := s.background
	pal := s.style.Palette
	s.paint.fill(img, img.Bounds(), pal.Background)

	s.drawWaveAxis(img)
	s.drawSpectrumAxis(img)

	draw.Draw(s.front, s.front.Bounds(), img, image.Point{}, draw.Src)
	s.captured = true
}

// UpdateLines replaces the trace data and renders one frame: restore the
// background, draw the two traces, flip. Either slice may be nil to leave a
// trace empty.
func (s *Surface) UpdateLines(waveform, spectrum []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.captured {
		return domain.ErrStaleBackground
	}
	s.waveLine = append(s.waveLine[:0], waveform...)
	s.spectrumLine = append(s.spectrumLine[:0], spectrum...)
	s.renderLocked()
	return nil
}

func (s *Surface) renderLocked() {
	draw.Draw(s.back, s.back.Bounds(), s.background, image.Point{}, draw.Src)
	s.drawTrace(s.back, s.wave, s.waveLine, s.style.Layout.WaveLineWidth, false)
	s.drawTrace(s.back, s.spectrum, s.spectrumLine, s.style.Layout.SpectrumLineWidth, true)

	s.front, s.back = s.back, s.front
}

// Redraw renders the current trace data again, capturing the background
// first when it is stale. Used after resizes.
func (s *Surface) Redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.captured {
		s.captureLocked()
	}
	s.renderLocked()
}

// Reset captures the background when it is stale and removes both traces.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.captured {
		s.captureLocked()
	}
	s.waveLine = s.waveLine[:0]
	s.spectrumLine = s.spectrumLine[:0]
	s.renderLocked()
}

// Clear removes both traces.
func (s *Surface) Clear() error {
	return s.UpdateLines(nil, nil)
}

// Front returns the last completed frame. It stays valid until the next
// UpdateLines, which reuses it as the back buffer.
func (s *Surface) Front() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.front
}

func (s *Surface) drawTrace(img *image.RGBA, a axis, pts []domain.Point, width int, spectrum bool) {
	if a.plot.Empty() || len(pts) == 0 {
		return
	}
	col := s.style.Palette.Trace
	if spectrum {
		col = s.style.Palette.TraceDim
	}

	havePrev := false
	var px, py float64
	for _, p := range pts {
		if spectrum && (p.X < a.xMin || p.X > a.xMax) {
			continue
		}
		x, y := a.px(p.X), a.py(p.Y)
		if havePrev {
			s.paint.thickLine(img, a.plot, px, py, x, y, width, col)
		}
		px, py, havePrev = x, y, true
	}
}

func (s *Surface) drawWaveAxis(img *image.RGBA) {
	a := s.wave
	if a.plot.Empty() {
		return
	}
	pal := s.style.Palette
	lbl := s.style.Labels
	l := s.style.Layout

	s.drawFrame(img, a.plot, lbl.WaveTitle, lbl.WaveYAxis)

	for i := 0; i <= l.GridDivisionsX; i++ {
		x := a.xMin + (a.xMax-a.xMin)*float64(i)/float64(l.GridDivisionsX)
		s.xTick(img, a, x, formatTick(x))
	}
	for i := 0; i <= l.GridDivisionsY; i++ {
		y := a.yMin + (a.yMax-a.yMin)*float64(i)/float64(l.GridDivisionsY)
		s.yTick(img, a, y, fmt.Sprintf("%.1f", y))
	}

	// zero line
	s.paint.hline(img, a.plot.Min.X, a.plot.Max.X-1, int(math.Round(a.py(0))), pal.TraceDim, 1)

	if !s.overview {
		cx := int(math.Round(a.px((a.xMin + a.xMax) / 2)))
		s.paint.vline(img, cx, a.plot.Min.Y, a.plot.Max.Y-1, pal.Marker, l.MarkerDash)
	}

	xLabel := lbl.WaveXAxis
	if s.overview {
		xLabel = "TRACK " + xLabel
	}
	s.xAxisLabel(img, a, xLabel)
}

func (s *Surface) drawSpectrumAxis(img *image.RGBA) {
	a := s.spectrum
	if a.plot.Empty() {
		return
	}
	lbl := s.style.Labels
	l := s.style.Layout

	s.drawFrame(img, a.plot, lbl.SpectrumTitle, lbl.SpectrumYAxis)

	for _, f := range logTicks(a.xMin, a.xMax) {
		s.xTick(img, a, f, formatHz(f))
	}
	span := -s.floorDB
	for i := 0; i <= l.GridDivisionsY/2; i++ {
		v := float64(i) / float64(l.GridDivisionsY/2)
		s.yTick(img, a, v, fmt.Sprintf("%.0f", s.floorDB+v*span))
	}

	s.xAxisLabel(img, a, lbl.SpectrumXAxis)
}

// drawFrame draws the plot background, border, title and y axis label.
func (s *Surface) drawFrame(img *image.RGBA, plot image.Rectangle, title, yLabel string) {
	pal := s.style.Palette
	s.paint.fill(img, plot, pal.Panel)
	s.paint.rect(img, plot.Inset(-1), pal.Border)
	s.paint.rect(img, plot, pal.Grid)

	s.paint.text(img, plot.Min.X, plot.Min.Y-6, title, pal.Trace)
	w := s.paint.textWidth(yLabel)
	s.paint.text(img, plot.Max.X-w, plot.Min.Y-6, yLabel, pal.AxisText)
}

func (s *Surface) xTick(img *image.RGBA, a axis, x float64, label string) {
	pal := s.style.Palette
	cx := int(math.Round(a.px(x)))
	s.paint.vline(img, cx, a.plot.Min.Y+1, a.plot.Max.Y-2, pal.Grid, 2)
	w := s.paint.textWidth(label)
	lx := min(max(cx-w/2, 0), s.width-w)
	s.paint.text(img, lx, a.plot.Max.Y+s.paint.textHeight()+3, label, pal.AxisText)
}

func (s *Surface) yTick(img *image.RGBA, a axis, y float64, label string) {
	pal := s.style.Palette
	cy := int(math.Round(a.py(y)))
	s.paint.hline(img, a.plot.Min.X+1, a.plot.Max.X-2, cy, pal.Grid, 2)
	w := s.paint.textWidth(label)
	s.paint.text(img, a.plot.Min.X-w-4, cy+s.paint.textHeight()/2, label, pal.AxisText)
}

func (s *Surface) xAxisLabel(img *image.RGBA, a axis, label string) {
	w := s.paint.textWidth(label)
	y := a.plot.Max.Y + 2*s.paint.textHeight() + 8
	s.paint.text(img, a.plot.Min.X+(a.plot.Dx()-w)/2, y, label, s.style.Palette.AxisText)
}

// logTicks returns 1-2-5 ticks within [lo, hi].
func logTicks(lo, hi float64) []float64 {
	var ticks []float64
	for decade := math.Pow(10, math.Floor(math.Log10(lo))); decade <= hi; decade *= 10 {
		for _, m := range []float64{1, 2, 5} {
			f := decade * m
			if f >= lo && f <= hi {
				ticks = append(ticks, f)
			}
		}
	}
	return ticks
}

func formatHz(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%gk", f/1000)
	}
	return fmt.Sprintf("%g", f)
}

func formatTick(v float64) string {
	if v >= 10000 {
		return fmt.Sprintf("%.0fs", v/1000)
	}
	return fmt.Sprintf("%.0f", v)
}

var _ ports.RenderSurface = (*Surface)(nil)
