package dsp

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SavitzkyGolay is a least-squares polynomial smoothing filter for a fixed
// input length.
//
// Interior points are smoothed with the center row of the projection onto
// polynomials of the given order. The first and last half-window points are
// taken from the polynomial fitted to the first and last full window.
type SavitzkyGolay struct {
	window int
	half   int
	// proj[r] holds the weights that produce the fitted value at row r of a window.
	proj [][]float64
	out  []float64
}

// NewSavitzkyGolay builds a filter for sequences of length n.
//
// An even window is reduced by one. If the window is not larger than the
// polynomial order, or longer than n, the filter is disabled and Apply
// returns its input unchanged.
func NewSavitzkyGolay(window, polyOrder, n int) *SavitzkyGolay {
	if window%2 == 0 {
		window--
	}
	sg := &SavitzkyGolay{window: window, half: window / 2}
	if window <= polyOrder || window > n || polyOrder < 0 {
		return sg
	}
	sg.proj = projection(window, polyOrder)
	if sg.proj == nil {
		return sg
	}
	sg.out = make([]float64, n)
	return sg
}

// Enabled reports whether Apply smooths its input.
func (sg *SavitzkyGolay) Enabled() bool {
	return sg.proj != nil
}

// Apply smooths x. When disabled, or when x has a different length than the
// filter was built for, x is returned as is. The returned slice is reused by
// the next call.
func (sg *SavitzkyGolay) Apply(x []float64) []float64 {
	if sg.proj == nil || len(x) != len(sg.out) {
		return x
	}
	n := len(x)
	w, h := sg.window, sg.half

	for i := 0; i < h; i++ {
		sg.out[i] = floats.Dot(sg.proj[i], x[:w])
		sg.out[n-h+i] = floats.Dot(sg.proj[h+1+i], x[n-w:])
	}
	center := sg.proj[h]
	for i := h; i < n-h; i++ {
		sg.out[i] = floats.Dot(center, x[i-h:i+h+1])
	}
	return sg.out
}

// projection returns A (AᵀA)⁻¹ Aᵀ for the Vandermonde matrix A of the window
// positions scaled to [-1, 1].
func projection(window, polyOrder int) [][]float64 {
	h := window / 2
	cols := polyOrder + 1
	a := mat.NewDense(window, cols, nil)
	for r := 0; r < window; r++ {
		t := float64(r-h) / float64(max(h, 1))
		v := 1.0
		for c := 0; c < cols; c++ {
			a.Set(r, c, v)
			v *= t
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil
	}
	var pinv mat.Dense
	pinv.Mul(&inv, a.T())
	var p mat.Dense
	p.Mul(a, &pinv)

	rows := make([][]float64, window)
	for r := range rows {
		rows[r] = mat.Row(nil, r, &p)
	}
	return rows
}
