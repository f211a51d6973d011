package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"github.com/tejashwikalptaru/revscope/internal/app"
)

var (
	renderOut string
	renderReq app.FrameRequest
)

// renderCmd draws one scope frame to a PNG file.
var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render one scope frame of an audio file to PNG",
	Long: `Render the waveform and spectrum display for one cursor position to a PNG.
With --overview the whole signal is drawn instead of the window around --at.`,
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

		req := renderReq
		req.Path = args[0]
		img, err := h.Render(req)
		if err != nil {
			return err
		}

		f, err := os.Create(renderOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", renderOut, err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode %s: %w", renderOut, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rendered: %s\n", renderOut)
		return nil
	},
}

func init() {
	flags := renderCmd.Flags()
	flags.StringVarP(&renderOut, "out", "o", "frame.png", "output PNG path")
	flags.Float64Var(&renderReq.At, "at", 0, "cursor position in seconds")
	flags.BoolVar(&renderReq.Reverse, "reverse", true, "render the reversed signal")
	flags.Float64Var(&renderReq.Speed, "speed", 1.0, "timebase factor (0.5 to 2.0)")
	flags.BoolVar(&renderReq.Overview, "overview", false, "draw the whole signal")
	flags.IntVar(&renderReq.Width, "width", 1200, "image width")
	flags.IntVar(&renderReq.Height, "height", 800, "image height")
}
