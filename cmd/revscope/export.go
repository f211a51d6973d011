package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tejashwikalptaru/revscope/internal/app"
)

var (
	exportOut   string
	exportSpeed float64
)

// exportCmd reverses a file and writes it as 16-bit PCM WAV.
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Reverse an audio file and save it as WAV",
	Long: `Reverse an audio file, apply the timebase factor and write a 16-bit PCM WAV.
Without --out the file is written next to the source as reversed_<name>.wav.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, log, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := app.NewHeadless(config, log)
		if err != nil {
			return err
		}
		path, err := h.Export(args[0], exportOut, exportSpeed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported: %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output WAV path")
	exportCmd.Flags().Float64Var(&exportSpeed, "speed", 1.0, "timebase factor (0.5 to 2.0)")
}
