// Package style holds the oscilloscope look: palette, fonts, panel layout and
// labels. A Style is a plain value; it is built once at startup and passed to
// the render surface and the UI shell.
package style

import (
	"image/color"
)

// Palette is the phosphor color scheme.
type Palette struct {
	Background   color.RGBA // window and plot background
	Panel        color.RGBA // control panel background
	Trace        color.RGBA // bright green trace
	TraceDim     color.RGBA // medium green, spectrum line and text
	Grid         color.RGBA // dark green grid
	Border       color.RGBA // panel borders
	Marker       color.RGBA // yellow cursor marker
	Alert        color.RGBA // red status/error color
	AxisText     color.RGBA // tick labels
	ButtonActive color.RGBA // pressed buttons
}

// Layout holds pixel metrics for the render surface and window.
type Layout struct {
	WindowWidth  float32
	WindowHeight float32
	PanelWidth   float32

	// Plot margins inside each axis, in pixels
	MarginLeft   int
	MarginRight  int
	MarginTop    int
	MarginBottom int
	// AxisGap is the vertical gap between the two axes
	AxisGap int

	WaveLineWidth     int
	SpectrumLineWidth int
	GridDivisionsX    int
	GridDivisionsY    int
	MarkerDash        int
}

// Labels are the texts drawn on the instrument.
type Labels struct {
	WindowTitle   string
	Model         string
	WaveTitle     string
	WaveXAxis     string
	WaveYAxis     string
	SpectrumTitle string
	SpectrumXAxis string
	SpectrumYAxis string
}

// Limits are the fixed data ranges of the two axes.
type Limits struct {
	WaveYMin      float64
	WaveYMax      float64
	SpectrumYMax  float64
	SpectrumMinHz float64
}

// Style is the complete immutable look of the instrument.
type Style struct {
	Palette Palette
	Layout  Layout
	Labels  Labels
	Limits  Limits
	// FontSize is the base UI text size
	FontSize float32
}

// Default returns the ASA-2000 green phosphor style.
func Default() Style {
	return Style{
		Palette: Palette{
			Background:   rgb(0x00, 0x00, 0x00),
			Panel:        rgb(0x0a, 0x0a, 0x0a),
			Trace:        rgb(0x00, 0xff, 0x41),
			TraceDim:     rgb(0x00, 0xaa, 0x00),
			Grid:         rgb(0x00, 0x33, 0x00),
			Border:       rgb(0x00, 0x1a, 0x00),
			Marker:       rgb(0xff, 0xff, 0x00),
			Alert:        rgb(0xff, 0x00, 0x00),
			AxisText:     rgb(0x00, 0xaa, 0x00),
			ButtonActive: rgb(0x00, 0x66, 0x00),
		},
		Layout: Layout{
			WindowWidth:       1200,
			WindowHeight:      800,
			PanelWidth:        260,
			MarginLeft:        64,
			MarginRight:       16,
			MarginTop:         24,
			MarginBottom:      36,
			AxisGap:           12,
			WaveLineWidth:     2,
			SpectrumLineWidth: 2,
			GridDivisionsX:    10,
			GridDivisionsY:    8,
			MarkerDash:        6,
		},
		Labels: Labels{
			WindowTitle:   "AUDIO SPECTRUM ANALYZER ASA-2000",
			Model:         "ASA-2000",
			WaveTitle:     "CH1: TIME DOMAIN WAVEFORM",
			WaveXAxis:     "TIME (ms)",
			WaveYAxis:     "AMPLITUDE (V)",
			SpectrumTitle: "CH2: FREQUENCY DOMAIN SPECTRUM",
			SpectrumXAxis: "FREQUENCY (Hz)",
			SpectrumYAxis: "MAGNITUDE (dB)",
		},
		Limits: Limits{
			WaveYMin:      -1.2,
			WaveYMax:      1.2,
			SpectrumYMax:  1.05,
			SpectrumMinHz: 20,
		},
		FontSize: 12,
	}
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
