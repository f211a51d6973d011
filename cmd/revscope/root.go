package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tejashwikalptaru/revscope/internal/app"
	"github.com/tejashwikalptaru/revscope/internal/logger"
)

var (
	configFile string
	v          = app.NewViper()
)

// rootCmd opens the analyzer window, optionally with a file already loaded.
var rootCmd = &cobra.Command{
	Use:   "revscope [file]",
	Short: "ASA-2000 reverse audio signal analyzer",
	Long: `revscope loads an audio file (MP3, WAV, FLAC or OGG), reverses it and
plays it back at 0.5x to 2.0x while a scope displays the waveform around the
playback cursor and its frequency spectrum.

Configuration is read from revscope.yaml in the working directory or
$HOME/.config/revscope, and from REVSCOPE_* environment variables.
Flags override both.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       app.GetVersionInfo().FullString(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(v)
	},
	RunE: runGUI,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "",
		"config file (default is ./revscope.yaml or $HOME/.config/revscope/revscope.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("decimation", "", "waveform decimation (peak, nearest, average)")
	flags.Float64("window-ms", 2000, "waveform window around the playback cursor in ms")

	rootCmd.Flags().Bool("mock-audio", false, "run without an audio device")

	mustBind(v, "log_level", flags.Lookup("log-level"))
	mustBind(v, "log_format", flags.Lookup("log-format"))
	mustBind(v, "display.decimation", flags.Lookup("decimation"))
	mustBind(v, "display.window_ms", flags.Lookup("window-ms"))
	mustBind(v, "mock_audio", rootCmd.Flags().Lookup("mock-audio"))

	rootCmd.AddCommand(infoCmd, exportCmd, renderCmd, configCmd)
}

// initConfig reads the config file chosen by --config, or searches the
// default locations.
func initConfig(v *viper.Viper) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	return app.ReadConfigFile(v)
}

// loadConfig decodes the merged configuration and builds its logger.
func loadConfig() (app.Config, *slog.Logger, error) {
	config, err := app.LoadConfig(v)
	if err != nil {
		return app.Config{}, nil, err
	}
	return config, logger.NewLogger(config.Logger()), nil
}

func runGUI(_ *cobra.Command, args []string) error {
	config, _, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		}
	}()

	var file string
	if len(args) == 1 {
		file = args[0]
	}

	// Run application (blocks until the window closed)
	application.Run(file)
	return nil
}

// mustBind binds a flag to a config key. Binding only fails for a nil flag,
// which is a programming error.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
