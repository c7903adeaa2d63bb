package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/assets"
	"github.com/ziadkadry99/stitch/internal/config"
	"github.com/ziadkadry99/stitch/internal/diagrams"
	"github.com/ziadkadry99/stitch/internal/fetch"
	"github.com/ziadkadry99/stitch/internal/markdown"
	"github.com/ziadkadry99/stitch/internal/pageinit"
	"github.com/ziadkadry99/stitch/internal/progress"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `stitch init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// siteRuntime is the headless page runtime built from the config.
type siteRuntime struct {
	Fetcher  fetch.Fetcher
	Markdown *markdown.Renderer
	Init     *pageinit.Initializer
}

// newFetcher reads pages from the site directory, or from cfg.Origin when
// remote is set.
func newFetcher(cfg *config.Config, remote bool) (fetch.Fetcher, error) {
	if !remote {
		return &fetch.FSFetcher{FS: os.DirFS(cfg.SiteDir)}, nil
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	f, err := fetch.NewHTTPFetcher(cfg.Origin, timeout)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func newRuntime(cfg *config.Config, f fetch.Fetcher, logger *zap.Logger) (*siteRuntime, error) {
	opts := markdown.DefaultOptions()
	if cfg.Diagram.Keyword != "" {
		opts.DiagramKeyword = cfg.Diagram.Keyword
	}
	if cfg.Markdown.HighlightStyle != "" {
		opts.HighlightStyle = cfg.Markdown.HighlightStyle
	}
	md := markdown.New(opts)

	hook, err := diagrams.New(diagrams.Config{
		Mode:      string(cfg.Diagram.Mode),
		Keyword:   cfg.Diagram.Keyword,
		Command:   cfg.Diagram.Command,
		ScriptURL: cfg.Diagram.ScriptURL,
	}, logger)
	if err != nil {
		return nil, err
	}

	inc := pageinit.Includes{
		Head:   cfg.HeadURL,
		Header: cfg.HeaderURL,
		Footer: cfg.FooterURL,
	}
	return &siteRuntime{
		Fetcher:  f,
		Markdown: md,
		Init:     pageinit.New(f, inc, md, hook, logger),
	}, nil
}

// newCopier builds the asset copier for the configured pairs.
func newCopier(cfg *config.Config, logger *zap.Logger, label string) *assets.Copier {
	pairs := make([]assets.Pair, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		pairs = append(pairs, assets.Pair{Src: a.Src, Dest: a.Dest})
	}
	c := assets.NewCopier(cfg.SiteDir, pairs, logger)
	c.Exclude = cfg.Exclude
	if label != "" {
		c.Reporter = progress.NewReporter(label)
	}
	return c
}
