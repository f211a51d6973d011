package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/viper"
	"github.com/tejashwikalptaru/revscope/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/logger"
	"github.com/tejashwikalptaru/revscope/internal/service"
	"gopkg.in/yaml.v3"
)

// Configuration sources.
const (
	// ConfigName is the config file name searched for, without extension
	ConfigName = "revscope"

	// EnvPrefix prefixes environment overrides, e.g. REVSCOPE_DISPLAY_WINDOW_MS
	EnvPrefix = "REVSCOPE"
)

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier, also the preferences namespace
	AppID string `mapstructure:"app_id" yaml:"app_id"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat is text or json
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// MockAudio replaces the oto engine with a silent in-memory engine
	MockAudio bool `mapstructure:"mock_audio" yaml:"mock_audio"`

	// RecentFiles is the length of the Open Recent list
	RecentFiles int `mapstructure:"recent_files" yaml:"recent_files"`

	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Spectrum SpectrumConfig `mapstructure:"spectrum" yaml:"spectrum"`
	Window   WindowConfig   `mapstructure:"window" yaml:"window"`

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App `mapstructure:"-" yaml:"-"`
}

// DisplayConfig configures the waveform channel and the animation clock.
type DisplayConfig struct {
	// WindowMs is the waveform window around the playback cursor
	WindowMs float64 `mapstructure:"window_ms" yaml:"window_ms"`

	// Budget is the maximum number of plotted waveform points
	Budget int `mapstructure:"budget" yaml:"budget"`

	// Decimation is peak, nearest or average. Empty uses the saved preference.
	Decimation string `mapstructure:"decimation" yaml:"decimation"`

	// TickInterval is the frame period
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
}

// SpectrumConfig configures the spectrum channel.
type SpectrumConfig struct {
	TransformSize   int     `mapstructure:"transform_size" yaml:"transform_size"`
	SmoothingWindow int     `mapstructure:"smoothing_window" yaml:"smoothing_window"`
	FloorDB         float64 `mapstructure:"floor_db" yaml:"floor_db"`
	Hann            bool    `mapstructure:"hann" yaml:"hann"`
	MinHz           float64 `mapstructure:"min_hz" yaml:"min_hz"`
}

// WindowConfig is the initial main window size in device independent pixels.
type WindowConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// Minimum window size at which both axes stay readable.
const (
	MinWindowWidth  = 640
	MinWindowHeight = 480
)

// SetDefaults registers the default value of every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app_id", "com.revscope.asa2000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("mock_audio", false)
	v.SetDefault("recent_files", memory.DefaultRecentCapacity)

	v.SetDefault("display.window_ms", 2000.0)
	v.SetDefault("display.budget", 4000)
	v.SetDefault("display.decimation", "")
	v.SetDefault("display.tick_interval", 100*time.Millisecond)

	v.SetDefault("spectrum.transform_size", dsp.DefaultTransformSize)
	v.SetDefault("spectrum.smoothing_window", dsp.DefaultSmoothingWindow)
	v.SetDefault("spectrum.floor_db", dsp.DefaultFloorDB)
	v.SetDefault("spectrum.hann", false)
	v.SetDefault("spectrum.min_hz", 20.0)

	v.SetDefault("window.width", 1200)
	v.SetDefault("window.height", 800)
}

// NewViper returns a viper instance with defaults, the config file search
// path and REVSCOPE_ environment overrides set up. The config file is not
// read yet.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/revscope")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfigFile reads the config file if one is found. A missing file is
// not an error.
func ReadConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("read config: %w", err)
}

// LoadConfig decodes and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(field string, value any, msg string) {
		errs = append(errs, &domain.ValidationError{
			Field: field, Value: value, Message: msg, Err: domain.ErrInvalidConfig,
		})
	}

	if c.AppID == "" {
		invalid("app_id", c.AppID, "must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid("log_level", c.LogLevel, "must be debug, info, warn or error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		invalid("log_format", c.LogFormat, "must be text or json")
	}
	if c.RecentFiles < 1 || c.RecentFiles > 100 {
		invalid("recent_files", c.RecentFiles, "must be between 1 and 100")
	}

	if c.Display.WindowMs <= 0 {
		invalid("display.window_ms", c.Display.WindowMs, "must be positive")
	}
	if c.Display.Budget < 2 {
		invalid("display.budget", c.Display.Budget, "must be at least 2")
	}
	if c.Display.Decimation != "" {
		if _, err := dsp.ParseDecimationMode(c.Display.Decimation); err != nil {
			invalid("display.decimation", c.Display.Decimation, "must be peak, nearest or average")
		}
	}
	if c.Display.TickInterval < 10*time.Millisecond {
		invalid("display.tick_interval", c.Display.TickInterval, "must be at least 10ms")
	}

	if n := c.Spectrum.TransformSize; n < 2 || n&(n-1) != 0 {
		errs = append(errs, domain.NewInvalidTransformSizeError(n))
	}
	if w := c.Spectrum.SmoothingWindow; w != 0 && (w%2 == 0 || w <= dsp.DefaultPolyOrder) {
		invalid("spectrum.smoothing_window", w, "must be 0 or an odd length above the polynomial order")
	}
	if c.Spectrum.FloorDB >= 0 {
		invalid("spectrum.floor_db", c.Spectrum.FloorDB, "must be negative")
	}
	if c.Spectrum.MinHz <= 0 {
		invalid("spectrum.min_hz", c.Spectrum.MinHz, "must be positive")
	}

	if c.Window.Width < MinWindowWidth || c.Window.Height < MinWindowHeight {
		invalid("window", fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height),
			fmt.Sprintf("must be at least %dx%d", MinWindowWidth, MinWindowHeight))
	}

	return errors.Join(errs...)
}

// Logger returns the logger configuration.
func (c Config) Logger() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(c.LogLevel, cfg.Level)
	cfg.Format = c.LogFormat
	return cfg
}

// Animator returns the frame animator configuration for mode.
func (c Config) Animator(mode dsp.DecimationMode) service.AnimatorConfig {
	return service.AnimatorConfig{
		WindowMs:        c.Display.WindowMs,
		Budget:          c.Display.Budget,
		Decimation:      mode,
		TransformSize:   c.Spectrum.TransformSize,
		SmoothingWindow: c.Spectrum.SmoothingWindow,
		FloorDB:         c.Spectrum.FloorDB,
		Hann:            c.Spectrum.Hann,
		MinHz:           c.Spectrum.MinHz,
	}
}

// DecimationMode returns the configured mode, and false when the saved
// preference should be used.
func (c Config) DecimationMode() (dsp.DecimationMode, bool) {
	if c.Display.Decimation == "" {
		return dsp.DecimatePeak, false
	}
	mode, err := dsp.ParseDecimationMode(c.Display.Decimation)
	return mode, err == nil
}

// YAML renders the configuration as a config file.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
