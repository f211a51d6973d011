package main

import (
	"github.com/spf13/cobra"
	"github.com/tejashwikalptaru/revscope/internal/app"
)

// configCmd prints the merged configuration as a config file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after merging defaults, the config file,
REVSCOPE_* environment variables and flags. The output is a valid revscope.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := app.LoadConfig(v)
		if err != nil {
			return err
		}
		out, err := config.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
