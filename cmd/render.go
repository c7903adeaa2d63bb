package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/stitch/internal/browser"
)

var (
	renderFormat string
	renderRemote bool
)

var renderCmd = &cobra.Command{
	Use:   "render <path>",
	Short: "Render a page the way the browser would see it",
	Long: `Loads a page, runs page initialization (shared fragments, post lists,
markdown content, diagrams) and prints the resulting document as HTML or
markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "output format: html or markdown")
	renderCmd.Flags().BoolVar(&renderRemote, "remote", false, "fetch from the configured origin instead of the site directory")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderFormat != "html" && renderFormat != "markdown" {
		return fmt.Errorf("unknown format %q: must be html or markdown", renderFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFetcher(cfg, renderRemote)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, f, logger)
	if err != nil {
		return err
	}

	sess, err := browser.NewSession(cfg.Origin, rt.Fetcher, rt.Init, logger)
	if err != nil {
		return err
	}
	if err := sess.Open(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	doc := sess.Document()
	var out string
	if renderFormat == "markdown" {
		out, err = doc.Markdown()
	} else {
		out, err = doc.HTML()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
