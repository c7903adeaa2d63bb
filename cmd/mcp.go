package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/stitch/internal/mcp"
)

var mcpRemote bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server over stdio",
	Long: `Exposes the site runtime to MCP clients: listing posts from manifests,
rendering initialized pages and rendering markdown. Protocol messages use
stdout, logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpRemote, "remote", false, "fetch from the configured origin instead of the site directory")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := newFetcher(cfg, mcpRemote)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, f, logger)
	if err != nil {
		return err
	}

	mcpserver.Version = Version
	srv := mcpserver.NewServer(mcpserver.Deps{
		Origin:   cfg.Origin,
		Fetcher:  rt.Fetcher,
		Init:     rt.Init,
		Markdown: rt.Markdown,
		Logger:   logger,
	})
	return srv.Serve()
}
