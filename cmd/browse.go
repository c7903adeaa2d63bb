package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/stitch/internal/browser"
	"github.com/ziadkadry99/stitch/internal/navigation"
)

var browseRemote bool

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "Navigate the site interactively without a browser",
	Long: `Opens a page (the site root by default) and reads commands from stdin,
one per line: a link to follow, "back", "reload" or "quit". Each
navigation is handled the way the page script handles it in a browser:
same-origin links are fetched and swapped in, everything else is left
alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseRemote, "remote", false, "fetch from the configured origin instead of the site directory")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFetcher(cfg, browseRemote)
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

	start := "/"
	if len(args) == 1 {
		start = args[0]
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if err := sess.Open(ctx, start); err != nil {
		return fmt.Errorf("loading %s: %w", start, err)
	}
	fmt.Fprintf(out, "%s (%s)\n", sess.Document().Title(), sess.URL())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		var (
			outcome navigation.Outcome
			err     error
		)
		switch line {
		case "back":
			outcome, err = sess.Back(ctx)
		case "reload":
			outcome, err = sess.Reload(ctx)
		default:
			outcome, err = sess.Navigate(ctx, line)
		}
		switch {
		case errors.Is(err, browser.ErrCrossOrigin), errors.Is(err, browser.ErrNoHistory):
			fmt.Fprintf(out, "! %v\n", err)
			continue
		case err != nil:
			fmt.Fprintf(out, "! %s failed: %v\n", line, err)
			continue
		}
		fmt.Fprintf(out, "[%s] %s (%s)\n", outcome, sess.Document().Title(), sess.URL())
	}
	return scanner.Err()
}
