package dsp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

func sine(freq float64, sampleRate, n int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestComputeSpectrum_LengthIsHalfTransformSize(t *testing.T) {
	for _, inputLen := range []int{0, 1, 100, 1024, 5000, 16384, 88200} {
		s, err := ComputeSpectrum(make([]float64, inputLen), 44100, 1024, 51)
		require.NoError(t, err)
		assert.Len(t, s.Points, 512, "input length %d", inputLen)
	}
}

func TestComputeSpectrum_SinePeak(t *testing.T) {
	const (
		rate = 44100
		n    = 16384
	)

	tests := []struct {
		name      string
		freq      float64
		smoothing int
	}{
		{name: "between bins, raw", freq: 1000, smoothing: 1},
		{name: "between bins, smoothed", freq: 1000, smoothing: 51},
		{name: "on bin, smoothed", freq: 372 * float64(rate) / n, smoothing: 51},
		{name: "high frequency", freq: 12345, smoothing: 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ComputeSpectrum(sine(tt.freq, rate, n, 0.5), rate, n, tt.smoothing)
			require.NoError(t, err)

			expected := tt.freq * n / rate
			assert.InDelta(t, expected, float64(PeakBin(s)), 1.0)
		})
	}
}

func TestComputeSpectrum_FrequencyAxis(t *testing.T) {
	c, err := NewSpectrumComputer(DefaultSpectrumConfig(48000))
	require.NoError(t, err)

	a, err := c.Compute(sine(440, 48000, 4000, 0.3))
	require.NoError(t, err)
	b, err := c.Compute(sine(3000, 48000, 20000, 0.9))
	require.NoError(t, err)

	require.Len(t, a.Points, DefaultTransformSize/2)
	for i := range a.Points {
		assert.Equal(t, a.Points[i].X, b.Points[i].X)
		if i > 0 {
			assert.Greater(t, a.Points[i].X, a.Points[i-1].X)
		}
	}
	assert.Equal(t, 0.0, a.Points[0].X)
	assert.InDelta(t, 24000.0, a.Points[len(a.Points)-1].X, 48000.0/DefaultTransformSize)
}

func TestComputeSpectrum_NormalizedRange(t *testing.T) {
	s, err := ComputeSpectrum(sine(2000, 44100, 16384, 1.0), 44100, 16384, 51)
	require.NoError(t, err)
	for _, p := range s.Points {
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 1.0)
	}

	silent, err := ComputeSpectrum(make([]float64, 16384), 44100, 16384, 51)
	require.NoError(t, err)
	for _, p := range silent.Points {
		assert.Zero(t, p.Y)
	}
}

func TestComputeSpectrum_FixedCeilingIsStable(t *testing.T) {
	c, err := NewSpectrumComputer(DefaultSpectrumConfig(44100))
	require.NoError(t, err)

	loud, err := c.Compute(sine(1000, 44100, 16384, 0.8))
	require.NoError(t, err)
	quiet, err := c.Compute(sine(1000, 44100, 16384, 0.08))
	require.NoError(t, err)

	lp, qp := PeakBin(loud), PeakBin(quiet)
	assert.Equal(t, lp, qp)
	// a 20 dB drop moves the peak by 20/100 of the display range
	assert.InDelta(t, 0.2, loud.Points[lp].Y-quiet.Points[qp].Y, 0.01)
}

func TestComputeSpectrum_InvalidTransformSize(t *testing.T) {
	for _, size := range []int{0, -16, 3, 1000, 16383} {
		_, err := ComputeSpectrum([]float64{1, 2, 3}, 44100, size, 51)
		require.Error(t, err, "size %d", size)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransformSize))

		var sizeErr *domain.InvalidTransformSizeError
		require.ErrorAs(t, err, &sizeErr)
		assert.Equal(t, size, sizeErr.Size)
	}
}

func TestComputeSpectrum_SmoothingLargerThanSequenceIsSkipped(t *testing.T) {
	raw, err := ComputeSpectrum(sine(5000, 44100, 64, 0.5), 44100, 64, 1)
	require.NoError(t, err)
	skipped, err := ComputeSpectrum(sine(5000, 44100, 64, 0.5), 44100, 64, 51)
	require.NoError(t, err)

	assert.Equal(t, raw, skipped)
}

func TestComputeSpectrum_MalformedSignal(t *testing.T) {
	buf := sine(440, 44100, 1024, 0.5)
	buf[100] = math.NaN()

	_, err := ComputeSpectrum(buf, 44100, 1024, 51)
	assert.ErrorIs(t, err, domain.ErrMalformedSignal)

	buf[100] = math.Inf(1)
	_, err = ComputeSpectrum(buf, 44100, 1024, 51)
	assert.ErrorIs(t, err, domain.ErrMalformedSignal)
}

func TestComputeSpectrum_HannWindow(t *testing.T) {
	cfg := DefaultSpectrumConfig(44100)
	cfg.TransformSize = 4096
	cfg.Hann = true
	c, err := NewSpectrumComputer(cfg)
	require.NoError(t, err)

	s, err := c.Compute(sine(3000, 44100, 4096, 0.5))
	require.NoError(t, err)
	assert.InDelta(t, 3000.0*4096/44100, float64(PeakBin(s)), 1.0)
}

func TestSavitzkyGolay_PreservesCubic(t *testing.T) {
	const n = 200
	x := make([]float64, n)
	for i := range x {
		v := float64(i) / 10
		x[i] = 0.5*v*v*v - 2*v*v + v - 3
	}

	sg := NewSavitzkyGolay(51, 3, n)
	require.True(t, sg.Enabled())

	y := sg.Apply(x)
	for i := range x {
		assert.InDelta(t, x[i], y[i], 1e-6*math.Max(1, math.Abs(x[i])), "index %d", i)
	}
}

func TestSavitzkyGolay_ReducesNoise(t *testing.T) {
	const n = 500
	x := make([]float64, n)
	for i := range x {
		if i%2 == 0 {
			x[i] = 1
		} else {
			x[i] = -1
		}
	}
	y := NewSavitzkyGolay(51, 3, n).Apply(x)
	for i := 25; i < n-25; i++ {
		assert.Less(t, math.Abs(y[i]), 0.2)
	}
}

func TestSavitzkyGolay_Disabled(t *testing.T) {
	tests := []struct {
		name   string
		window int
		order  int
		n      int
	}{
		{name: "window larger than sequence", window: 51, order: 3, n: 20},
		{name: "window not above order", window: 3, order: 3, n: 100},
		{name: "even window reduced to order", window: 4, order: 3, n: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg := NewSavitzkyGolay(tt.window, tt.order, tt.n)
			assert.False(t, sg.Enabled())

			x := make([]float64, tt.n)
			x[0] = 1
			assert.Equal(t, x, sg.Apply(x))
		})
	}
}
