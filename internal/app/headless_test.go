package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/decode"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/logger"
	"github.com/tejashwikalptaru/revscope/internal/style"
	"github.com/tejashwikalptaru/revscope/internal/testutil"
)

// Helper to write a short test tone and return a headless pipeline.
func newTestHeadless(t *testing.T) (*Headless, string) {
	t.Helper()
	log := logger.NewTestLogger()

	path := filepath.Join(t.TempDir(), "tone.wav")
	_, err := decode.NewProcessor(log).ExportWAV(testutil.SineBuffer(1000, 8000, 1, 1, 0.5), path)
	require.NoError(t, err)

	config := DefaultConfig()
	config.Spectrum.TransformSize = 1024
	h, err := NewHeadless(config, log)
	require.NoError(t, err)
	return h, path
}

func TestHeadless_Info(t *testing.T) {
	h, path := newTestHeadless(t)

	meta, err := h.Info(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, meta.SampleRate)
	assert.Equal(t, 1, meta.Channels)
	assert.Equal(t, "WAV", meta.Format)
	assert.Equal(t, "tone.wav", meta.FileName)
}

func TestHeadless_InfoMissingFile(t *testing.T) {
	h, _ := newTestHeadless(t)

	_, err := h.Info(filepath.Join(t.TempDir(), "missing.wav"))

	var decodeErr *domain.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestHeadless_ExportDefaultPath(t *testing.T) {
	h, path := newTestHeadless(t)

	out, err := h.Export(path, "", 2.0)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "reversed_tone.wav"), out)
	_, err = os.Stat(out)
	require.NoError(t, err)

	meta, err := h.Info(out)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, meta.Duration.Seconds(), 0.01)
}

func TestHeadless_ExportInvalidSpeed(t *testing.T) {
	h, path := newTestHeadless(t)

	_, err := h.Export(path, filepath.Join(t.TempDir(), "out.wav"), 4.0)

	assert.ErrorIs(t, err, domain.ErrInvalidSpeed)
}

func TestHeadless_RenderFrame(t *testing.T) {
	h, path := newTestHeadless(t)

	img, err := h.Render(FrameRequest{Path: path, At: 0.5, Reverse: true, Width: 640, Height: 480})
	require.NoError(t, err)

	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestHeadless_RenderOverview(t *testing.T) {
	h, path := newTestHeadless(t)

	img, err := h.Render(FrameRequest{Path: path, Overview: true, Width: 400, Height: 300})
	require.NoError(t, err)

	bg := style.Default().Palette.Background
	r, g, b, _ := img.At(0, 0).RGBA()
	br, bgG, bb, _ := bg.RGBA()
	assert.Equal(t, []uint32{br, bgG, bb}, []uint32{r, g, b})
}

func TestHeadless_RenderTooSmall(t *testing.T) {
	h, path := newTestHeadless(t)

	_, err := h.Render(FrameRequest{Path: path, Width: 10, Height: 10})

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "size", valErr.Field)
}
