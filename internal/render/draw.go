package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// painter groups the raster primitives used by the surface.
type painter struct {
	face font.Face
}

func newPainter() painter {
	return painter{face: basicfont.Face7x13}
}

// fill paints r with a solid color.
func (painter) fill(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// rect strokes the outline of r.
func (p painter) rect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	p.hline(img, r.Min.X, r.Max.X-1, r.Min.Y, col, 1)
	p.hline(img, r.Min.X, r.Max.X-1, r.Max.Y-1, col, 1)
	p.vline(img, r.Min.X, r.Min.Y, r.Max.Y-1, col, 1)
	p.vline(img, r.Max.X-1, r.Min.Y, r.Max.Y-1, col, 1)
}

// hline draws a horizontal line; dash > 1 draws dash pixels on, dash off.
func (painter) hline(img *image.RGBA, x0, x1, y int, col color.RGBA, dash int) {
	b := img.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for x := max(x0, b.Min.X); x <= min(x1, b.Max.X-1); x++ {
		if dash > 1 && ((x-x0)/dash)%2 == 1 {
			continue
		}
		img.SetRGBA(x, y, col)
	}
}

// vline draws a vertical line; dash > 1 draws dash pixels on, dash off.
func (painter) vline(img *image.RGBA, x, y0, y1 int, col color.RGBA, dash int) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	for y := max(y0, b.Min.Y); y <= min(y1, b.Max.Y-1); y++ {
		if dash > 1 && ((y-y0)/dash)%2 == 1 {
			continue
		}
		img.SetRGBA(x, y, col)
	}
}

// thickLine draws a segment with the given thickness, clipped to clip.
func (painter) thickLine(img *image.RGBA, clip image.Rectangle, x1, y1, x2, y2 float64, thickness int, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)

	if length == 0 {
		px, py := int(x1), int(y1)
		if image.Pt(px, py).In(clip) {
			img.SetRGBA(px, py, col)
		}
		return
	}

	// perpendicular unit vector
	perpX := -dy / length
	perpY := dx / length

	steps := int(length) + 1
	lo := -(thickness - 1) / 2
	hi := thickness / 2

	for t := lo; t <= hi; t++ {
		offsetX := float64(t) * perpX
		offsetY := float64(t) * perpY

		for i := 0; i <= steps; i++ {
			progress := float64(i) / float64(steps)
			px := int(math.Round(x1 + dx*progress + offsetX))
			py := int(math.Round(y1 + dy*progress + offsetY))

			if image.Pt(px, py).In(clip) {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

// text draws s with its baseline at (x, y).
func (p painter) text(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: p.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textWidth returns the advance of s in pixels.
func (p painter) textWidth(s string) int {
	return font.MeasureString(p.face, s).Ceil()
}

// textHeight returns the ascent of the face in pixels.
func (p painter) textHeight() int {
	return p.face.Metrics().Ascent.Ceil()
}
