package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/stitch/internal/server"
)

var (
	servePort     int
	serveOpen     bool
	serveNoReload bool
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site locally with live reload",
	Long: `Copies assets, then serves the site directory (falling back to the publish
directory) on localhost. Source changes re-copy the assets and reload
connected pages.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the site in the default browser")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "disable file watching and live reload")
	serveCmd.Flags().BoolVar(&serveAllowAll, "cors-allow-all", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("open") {
		cfg.Open = serveOpen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	copier := newCopier(cfg, logger, "")
	if _, err := copier.Copy(ctx); err != nil {
		logger.Warn("initial asset copy incomplete", zap.Error(err))
	}

	publishDir := filepath.Join(cfg.SiteDir, cfg.PublishDir)
	srv := server.New(server.Config{
		Port:       cfg.Port,
		SiteDir:    cfg.SiteDir,
		PublishDir: publishDir,
		AllowAll:   serveAllowAll,
		LiveReload: !serveNoReload,
	}, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})

	if !serveNoReload {
		w := &server.Watcher{
			Roots: []string{cfg.SiteDir},
			Ignore: []string{
				publishDir,
				filepath.Join(cfg.SiteDir, cfg.OutDir),
				filepath.Join(cfg.SiteDir, ".git"),
				filepath.Join(cfg.SiteDir, "node_modules"),
			},
			OnChange: func() {
				if _, err := copier.Copy(ctx); err != nil {
					logger.Warn("asset copy failed", zap.Error(err))
				}
				n := srv.Hub().Broadcast("reload")
				logger.Info("site changed, reloading", zap.Int("clients", n))
			},
			Logger: logger,
		}
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	fmt.Printf("Serving %s at %s\n", cfg.SiteDir, srv.Addr())
	fmt.Println("Press Ctrl+C to stop.")
	if cfg.Open {
		if err := server.OpenBrowser(srv.Addr()); err != nil {
			logger.Warn("could not open browser", zap.Error(err))
		}
	}

	return g.Wait()
}
