// Package build assembles the deployable site: the public directory plus
// every declared HTML entry point.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/assets"
	"github.com/ziadkadry99/stitch/internal/progress"
)

// Config describes one build.
type Config struct {
	Root          string
	OutDir        string
	PublicDir     string
	EmptyOutDir   bool
	CopyPublicDir bool
	// Entries maps an entry name to an HTML file relative to Root.
	Entries map[string]string
}

// Result lists what a build wrote, relative to OutDir.
type Result struct {
	Entries []string
	Public  []string
}

// Builder runs builds.
type Builder struct {
	Config   Config
	Reporter progress.Reporter
	Logger   *zap.Logger
}

// New creates a Builder.
func New(cfg Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Config: cfg, Reporter: progress.Nop{}, Logger: logger}
}

// Build validates the entries, prepares OutDir, copies the public directory
// and then writes each entry at its path relative to Root.
func (b *Builder) Build(ctx context.Context) (Result, error) {
	var res Result
	cfg := b.Config

	if cfg.OutDir == "" {
		return res, fmt.Errorf("build: out dir is required")
	}
	names, err := b.checkEntries()
	if err != nil {
		return res, err
	}

	outDir := b.abs(cfg.OutDir)
	if err := guardOutDir(b.abs("."), outDir); err != nil {
		return res, err
	}
	if cfg.EmptyOutDir {
		if err := os.RemoveAll(outDir); err != nil {
			return res, fmt.Errorf("build: emptying %s: %w", cfg.OutDir, err)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("build: creating %s: %w", cfg.OutDir, err)
	}

	if cfg.CopyPublicDir && cfg.PublicDir != "" {
		public, err := b.copyPublic(ctx, outDir)
		if err != nil {
			return res, err
		}
		res.Public = public
	}

	reporter := b.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	reporter.Start(len(names))
	defer reporter.Finish()

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel := filepath.ToSlash(filepath.Clean(cfg.Entries[name]))
		if err := writeEntry(b.abs(rel), filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
			return res, fmt.Errorf("build: entry %s: %w", name, err)
		}
		res.Entries = append(res.Entries, rel)
		b.Logger.Debug("wrote entry", zap.String("name", name), zap.String("path", rel))
		reporter.Update(i+1, rel)
	}

	b.Logger.Info("build finished",
		zap.String("out_dir", cfg.OutDir),
		zap.Int("entries", len(res.Entries)),
		zap.Int("public_files", len(res.Public)))
	return res, nil
}

// checkEntries makes sure every entry exists and stays inside Root.
// Entry names come back sorted.
func (b *Builder) checkEntries() ([]string, error) {
	names := make([]string, 0, len(b.Config.Entries))
	for name, rel := range b.Config.Entries {
		clean := filepath.Clean(filepath.FromSlash(rel))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("build: entry %s: %q is outside the root", name, rel)
		}
		info, err := os.Stat(b.abs(clean))
		if err != nil {
			return nil, fmt.Errorf("build: entry %s: %w", name, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("build: entry %s: %q is a directory", name, rel)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (b *Builder) copyPublic(ctx context.Context, outDir string) ([]string, error) {
	publicDir := b.abs(b.Config.PublicDir)
	if _, err := os.Stat(publicDir); err != nil {
		if os.IsNotExist(err) {
			b.Logger.Warn("public dir missing", zap.String("dir", b.Config.PublicDir))
			return nil, nil
		}
		return nil, fmt.Errorf("build: reading %s: %w", b.Config.PublicDir, err)
	}

	rel, err := filepath.Rel(publicDir, outDir)
	if err != nil {
		return nil, fmt.Errorf("build: locating out dir: %w", err)
	}
	c := assets.NewCopier(publicDir, []assets.Pair{{Src: ".", Dest: rel}}, b.Logger)
	c.Exclude = nil
	res, err := c.Copy(ctx)
	if err != nil {
		return nil, fmt.Errorf("build: copying public dir: %w", err)
	}
	return res.Copied, nil
}

func (b *Builder) abs(rel string) string {
	return filepath.Join(b.Config.Root, filepath.FromSlash(rel))
}

// guardOutDir refuses to empty the root itself or a directory above it.
func guardOutDir(root, outDir string) error {
	r, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("build: resolving root: %w", err)
	}
	o, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("build: resolving out dir: %w", err)
	}
	rel, err := filepath.Rel(o, r)
	if err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return fmt.Errorf("build: out dir %s contains the site root", outDir)
	}
	return nil
}

func writeEntry(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := atomic.WriteFile(dest, f); err != nil {
		return err
	}
	return os.Chmod(dest, info.Mode().Perm())
}
