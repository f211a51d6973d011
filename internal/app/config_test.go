package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.revscope.asa2000", config.AppID)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, 2000.0, config.Display.WindowMs)
	assert.Equal(t, 4000, config.Display.Budget)
	assert.Equal(t, 100*time.Millisecond, config.Display.TickInterval)
	assert.Equal(t, dsp.DefaultTransformSize, config.Spectrum.TransformSize)
	assert.Equal(t, 1200, config.Window.Width)
	assert.False(t, config.MockAudio)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("REVSCOPE_DISPLAY_WINDOW_MS", "500")
	t.Setenv("REVSCOPE_MOCK_AUDIO", "true")

	config, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 500.0, config.Display.WindowMs)
	assert.True(t, config.MockAudio)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "revscope.yaml")
	content := []byte("log_level: debug\ndisplay:\n  decimation: nearest\n  tick_interval: 50ms\nspectrum:\n  transform_size: 4096\n")
	require.NoError(t, os.WriteFile(file, content, 0o600))

	v := NewViper()
	v.SetConfigFile(file)
	require.NoError(t, ReadConfigFile(v))

	config, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 50*time.Millisecond, config.Display.TickInterval)
	assert.Equal(t, 4096, config.Spectrum.TransformSize)

	mode, ok := config.DecimationMode()
	assert.True(t, ok)
	assert.Equal(t, dsp.DecimateNearest, mode)
}

func TestReadConfigFile_Missing(t *testing.T) {
	v := viper.New()
	v.SetConfigName("does-not-exist")
	v.AddConfigPath(t.TempDir())

	assert.NoError(t, ReadConfigFile(v))
}

func TestConfig_ValidateTransformSize(t *testing.T) {
	config := DefaultConfig()
	config.Spectrum.TransformSize = 1000

	err := config.Validate()

	var sizeErr *domain.InvalidTransformSizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 1000, sizeErr.Size)
}

func TestConfig_ValidateReportsAll(t *testing.T) {
	config := DefaultConfig()
	config.LogFormat = "xml"
	config.Display.Budget = 1
	config.Display.Decimation = "median"
	config.Window.Width = 100

	err := config.Validate()
	require.ErrorIs(t, err, domain.ErrInvalidConfig)

	for _, field := range []string{"log_format", "display.budget", "display.decimation", "window"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestConfig_DecimationMode(t *testing.T) {
	config := DefaultConfig()

	_, ok := config.DecimationMode()
	assert.False(t, ok, "empty decimation defers to the saved preference")

	config.Display.Decimation = "average"
	mode, ok := config.DecimationMode()
	assert.True(t, ok)
	assert.Equal(t, dsp.DecimateAverage, mode)
}

func TestConfig_Animator(t *testing.T) {
	config := DefaultConfig()
	config.Display.WindowMs = 750

	cfg := config.Animator(dsp.DecimateNearest)

	assert.Equal(t, 750.0, cfg.WindowMs)
	assert.Equal(t, dsp.DecimateNearest, cfg.Decimation)
	assert.Equal(t, config.Spectrum.TransformSize, cfg.TransformSize)
}

func TestConfig_YAML(t *testing.T) {
	config := DefaultConfig()

	out, err := config.YAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "com.revscope.asa2000", decoded["app_id"])
	assert.Contains(t, decoded, "display")
	assert.NotContains(t, decoded, "TestFyneApp")
}
