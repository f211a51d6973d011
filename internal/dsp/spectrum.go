package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// Spectrum defaults used by the analyzer display.
const (
	DefaultTransformSize   = 16384
	DefaultSmoothingWindow = 51
	DefaultPolyOrder       = 3
	DefaultFloorDB         = -100.0
)

// SpectrumConfig configures a SpectrumComputer.
type SpectrumConfig struct {
	SampleRate      int
	TransformSize   int
	SmoothingWindow int
	PolyOrder       int

	// FloorDB is the level that maps to 0. 0 dBFS always maps to 1.
	FloorDB float64

	// Hann applies a Hann window before the transform.
	Hann bool
}

// DefaultSpectrumConfig returns the analyzer defaults for a sample rate.
func DefaultSpectrumConfig(sampleRate int) SpectrumConfig {
	return SpectrumConfig{
		SampleRate:      sampleRate,
		TransformSize:   DefaultTransformSize,
		SmoothingWindow: DefaultSmoothingWindow,
		PolyOrder:       DefaultPolyOrder,
		FloorDB:         DefaultFloorDB,
	}
}

// SpectrumComputer computes display spectra for a fixed sample rate and
// transform size. The FFT plan, the smoothing filter and the frequency axis
// are built once, so every Compute call returns the same X values.
//
// Magnitudes are normalized against a fixed ceiling: a full-scale sine maps to
// 1.0 and FloorDB maps to 0, independent of how loud the current window is.
//
// A SpectrumComputer is not safe for concurrent use.
type SpectrumComputer struct {
	cfg      SpectrumConfig
	fft      *fourier.FFT
	smoother *SavitzkyGolay
	freqs    []float64

	// scratch
	input  []float64
	coeffs []complex128
	mags   []float64
}

// NewSpectrumComputer validates cfg and prepares the transform.
func NewSpectrumComputer(cfg SpectrumConfig) (*SpectrumComputer, error) {
	if !isPowerOfTwo(cfg.TransformSize) {
		return nil, domain.NewInvalidTransformSizeError(cfg.TransformSize)
	}
	if cfg.SampleRate <= 0 {
		return nil, domain.NewValidationError("sample_rate", cfg.SampleRate, "must be positive")
	}
	if cfg.FloorDB >= 0 {
		cfg.FloorDB = DefaultFloorDB
	}

	n := cfg.TransformSize
	half := n / 2
	freqs := make([]float64, half)
	for k := range freqs {
		freqs[k] = float64(k) * float64(cfg.SampleRate) / float64(n)
	}

	return &SpectrumComputer{
		cfg:      cfg,
		fft:      fourier.NewFFT(n),
		smoother: NewSavitzkyGolay(cfg.SmoothingWindow, cfg.PolyOrder, half),
		freqs:    freqs,
		input:    make([]float64, n),
		coeffs:   make([]complex128, half+1),
		mags:     make([]float64, half),
	}, nil
}

// Frequencies returns the frequency axis in Hz. Callers must not modify it.
func (c *SpectrumComputer) Frequencies() []float64 {
	return c.freqs
}

// Compute returns the smoothed, normalized spectrum of samples.
// samples are zero-padded or truncated to the transform size.
func (c *SpectrumComputer) Compute(samples []float64) (domain.Spectrum, error) {
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Spectrum{}, domain.ErrMalformedSignal
		}
	}

	n := c.cfg.TransformSize
	copied := copy(c.input, samples)
	clear(c.input[copied:])
	if c.cfg.Hann {
		window.Hann(c.input[:copied])
	}

	c.coeffs = c.fft.Coefficients(c.coeffs, c.input)
	for k := range c.mags {
		re, im := real(c.coeffs[k]), imag(c.coeffs[k])
		c.mags[k] = math.Hypot(re, im)
	}

	smoothed := c.smoother.Apply(c.mags)

	ref := float64(n) / 2
	span := -c.cfg.FloorDB
	points := make([]domain.Point, len(smoothed))
	for k, m := range smoothed {
		if m < 0 {
			m = 0
		}
		db := c.cfg.FloorDB
		if m > 0 {
			db = 20 * math.Log10(m/ref)
		}
		db = math.Max(c.cfg.FloorDB, math.Min(0, db))
		points[k] = domain.Point{X: c.freqs[k], Y: (db - c.cfg.FloorDB) / span}
	}
	return domain.Spectrum{Points: points}, nil
}

// ComputeSpectrum is a one-shot form of SpectrumComputer.Compute using the
// default polynomial order and dB floor.
func ComputeSpectrum(samples []float64, sampleRate, transformSize, smoothingWindow int) (domain.Spectrum, error) {
	cfg := DefaultSpectrumConfig(sampleRate)
	cfg.TransformSize = transformSize
	cfg.SmoothingWindow = smoothingWindow
	c, err := NewSpectrumComputer(cfg)
	if err != nil {
		return domain.Spectrum{}, err
	}
	return c.Compute(samples)
}

// PeakBin returns the index of the largest magnitude in s.
func PeakBin(s domain.Spectrum) int {
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		ys[i] = p.Y
	}
	if len(ys) == 0 {
		return -1
	}
	return floats.MaxIdx(ys)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
