package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Copy site assets into the publish directory",
	Long: `Copies each configured source directory (content, includes, css, blog
by default) into the publish directory. Missing sources are skipped with a
warning; files matching an exclude pattern are not copied.`,
	RunE: runAssets,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
}

func runAssets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := newCopier(cfg, logger, "Copying assets").Copy(cmd.Context())
	fmt.Printf("Copied %d file(s), skipped %d, %d source(s) missing\n",
		len(res.Copied), len(res.Skipped), len(res.Missing))
	if err != nil {
		return fmt.Errorf("copying assets: %w", err)
	}
	return nil
}
