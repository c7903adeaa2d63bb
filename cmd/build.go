package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/stitch/internal/build"
	"github.com/ziadkadry99/stitch/internal/progress"
)

var buildSkipAssets bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the publishable site",
	Long: `Copies assets into the publish directory, then writes every HTML entry
point and the publish directory into the output directory.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildSkipAssets, "skip-assets", false, "do not copy assets before building")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !buildSkipAssets {
		if _, err := newCopier(cfg, logger, "Copying assets").Copy(ctx); err != nil {
			return fmt.Errorf("copying assets: %w", err)
		}
	}

	b := build.New(build.Config{
		Root:          cfg.SiteDir,
		OutDir:        cfg.OutDir,
		PublicDir:     cfg.PublishDir,
		EmptyOutDir:   cfg.EmptyOutDir,
		CopyPublicDir: cfg.CopyPublicDir,
		Entries:       cfg.Entries,
	}, logger)
	b.Reporter = progress.NewReporter("Writing entries")

	res, err := b.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Built %d entries and %d public file(s) into %s\n", len(res.Entries), len(res.Public), cfg.OutDir)
	return nil
}
