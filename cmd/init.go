package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/stitch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stitch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure stitch for your site and writes the config file (stitch.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
