package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tejashwikalptaru/revscope/internal/app"
	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// infoCmd prints the signal parameters panel for a file.
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the signal parameters of an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, log, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := app.NewHeadless(config, log)
		if err != nil {
			return err
		}
		meta, err := h.Info(args[0])
		if err != nil {
			return err
		}
		printInfo(cmd.OutOrStdout(), meta)
		return nil
	},
}

func printInfo(w io.Writer, meta domain.AudioMetadata) {
	fmt.Fprintln(w, "SIGNAL PARAMETERS")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	printKeyValue(w, "File", meta.FileName)
	printKeyValue(w, "Format", meta.Format)
	printKeyValue(w, "Sample Rate", fmt.Sprintf("%d Hz", meta.SampleRate))
	printKeyValue(w, "Channels", fmt.Sprintf("%d", meta.Channels))
	printKeyValue(w, "Bit Depth", fmt.Sprintf("%d", meta.BitDepth))
	printKeyValue(w, "Bitrate", fmt.Sprintf("%.0f kbps", meta.BitrateKbps))
	printKeyValue(w, "Duration", fmt.Sprintf("%.2f s", meta.Duration.Seconds()))
	if meta.Title != "" {
		printKeyValue(w, "Title", meta.Title)
	}
	if meta.Artist != "" {
		printKeyValue(w, "Artist", meta.Artist)
	}
	if meta.Album != "" {
		printKeyValue(w, "Album", meta.Album)
	}
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %-14s %s\n", key+":", value)
}
