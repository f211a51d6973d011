package app

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/decode"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/logger"
	"github.com/tejashwikalptaru/revscope/internal/testutil"
)

// Helper to build an application over the test driver and the mock engine.
func newTestApplication(t *testing.T, mutate func(*Config)) *Application {
	t.Helper()
	fyneApp := test.NewApp()
	t.Cleanup(fyneApp.Quit)

	config := DefaultConfig()
	config.MockAudio = true
	config.TestFyneApp = fyneApp
	if mutate != nil {
		mutate(&config)
	}

	app, err := NewApplication(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })
	return app
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t, nil)

	audio, playback, preference := app.Services()
	assert.NotNil(t, audio)
	assert.NotNil(t, playback)
	assert.NotNil(t, preference)
	assert.NotNil(t, app.Animator())
	assert.NotNil(t, app.EventBus())
	assert.NotNil(t, app.FyneApp())
	assert.Equal(t, domain.AnimatorStopped, app.Animator().State())
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.MockAudio = true
	config.TestFyneApp = test.NewApp()
	config.Spectrum.TransformSize = 1000

	app, err := NewApplication(config)
	assert.Nil(t, app)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransformSize)
}

func TestApplicationLifecycle(t *testing.T) {
	app := newTestApplication(t, nil)

	require.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestApplication_LoadReversePlay(t *testing.T) {
	app := newTestApplication(t, nil)
	audio, playback, preference := app.Services()

	path := filepath.Join(t.TempDir(), "tone.wav")
	_, err := decode.NewProcessor(logger.NewTestLogger()).ExportWAV(testutil.SineBuffer(440, 8000, 0.5, 1, 0.5), path)
	require.NoError(t, err)

	app.presenter.OnFileOpened(path)
	require.NotNil(t, audio.Original())
	assert.Equal(t, 8000, audio.Metadata().SampleRate)
	assert.Equal(t, []string{path}, preference.RecentFiles())

	app.presenter.OnReverseClicked()
	require.NotNil(t, audio.Processed())

	app.presenter.OnPlayClicked()
	assert.Equal(t, domain.StatusPlaying, playback.Status())
	assert.Equal(t, domain.AnimatorRunning, app.Animator().State())

	app.presenter.OnStopClicked()
	assert.Equal(t, domain.StatusStopped, playback.Status())
}

func TestApplication_DecimationFromConfigIsSaved(t *testing.T) {
	app := newTestApplication(t, func(c *Config) {
		c.Display.Decimation = "average"
	})
	_, _, preference := app.Services()

	assert.Equal(t, dsp.DecimateAverage, preference.Decimation())
}

func TestApplication_RestoresSavedSpeed(t *testing.T) {
	fyneApp := test.NewApp()
	t.Cleanup(fyneApp.Quit)

	first := newTestApplication(t, func(c *Config) { c.TestFyneApp = fyneApp })
	audio, _, _ := first.Services()
	require.NoError(t, audio.SetSpeed(1.5))
	require.NoError(t, first.Shutdown())

	second := newTestApplication(t, func(c *Config) { c.TestFyneApp = fyneApp })
	audio, _, _ = second.Services()
	assert.Equal(t, 1.5, audio.Speed())
}

func TestVersionInfo(t *testing.T) {
	info := VersionInfo{Version: "1.0.0", GitCommit: "abc123", BuildTime: "now"}
	assert.Equal(t, "revscope 1.0.0 (commit: abc123, built: now)", info.FullString())

	info.GitTag = "v1.0.1"
	assert.Contains(t, info.FullString(), "v1.0.1")
}
