// Package assets copies the site's static sources (content, includes,
// styles, posts) into the publish directory.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/progress"
)

// Pair maps a source directory (or file) to its destination, both relative
// to the copier's root.
type Pair struct {
	Src  string
	Dest string
}

// Result summarises one Copy run. Paths are relative to the root.
type Result struct {
	Copied  []string
	Skipped []string
	Missing []string
	Failed  []string
}

// Copier recursively copies Pairs under Root.
type Copier struct {
	Root     string
	Pairs    []Pair
	Exclude  []string
	Reporter progress.Reporter
	Logger   *zap.Logger
}

// NewCopier creates a Copier with the default excludes.
func NewCopier(root string, pairs []Pair, logger *zap.Logger) *Copier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Copier{
		Root:     root,
		Pairs:    pairs,
		Exclude:  append([]string(nil), DefaultExcludes...),
		Reporter: progress.Nop{},
		Logger:   logger,
	}
}

type job struct {
	src, dest, rel string
	mode           fs.FileMode
}

// Copy copies every pair. A missing source is logged and the remaining
// pairs still run; individual file failures are collected and returned
// together once everything else has been copied.
func (c *Copier) Copy(ctx context.Context) (Result, error) {
	var res Result
	logger := c.logger()

	var jobs []job
	for _, p := range c.Pairs {
		planned, skipped, err := c.plan(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				res.Missing = append(res.Missing, p.Src)
				logger.Warn("asset source missing", zap.String("src", p.Src), zap.Error(err))
				continue
			}
			res.Failed = append(res.Failed, p.Src)
			logger.Error("failed to read asset source", zap.String("src", p.Src), zap.Error(err))
			continue
		}
		for _, rel := range skipped {
			logger.Info("skipped asset", zap.String("path", rel))
		}
		res.Skipped = append(res.Skipped, skipped...)
		jobs = append(jobs, planned...)
	}

	reporter := c.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	reporter.Start(len(jobs))
	defer reporter.Finish()

	var errs []error
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := copyFile(j); err != nil {
			res.Failed = append(res.Failed, j.rel)
			logger.Error("failed to copy asset", zap.String("path", j.rel), zap.Error(err))
			errs = append(errs, err)
		} else {
			res.Copied = append(res.Copied, j.rel)
			logger.Debug("copied asset", zap.String("path", j.rel))
		}
		reporter.Update(i+1, j.rel)
	}
	return res, errors.Join(errs...)
}

// plan lists the files under one pair, splitting off excluded ones.
func (c *Copier) plan(p Pair) ([]job, []string, error) {
	srcRoot := filepath.Join(c.Root, p.Src)
	destRoot := filepath.Join(c.Root, p.Dest)

	info, err := os.Stat(srcRoot)
	if err != nil {
		return nil, nil, err
	}

	var jobs []job
	var skipped []string
	if !info.IsDir() {
		if Excluded(p.Src, c.Exclude) {
			return nil, []string{filepath.ToSlash(p.Src)}, nil
		}
		return []job{{src: srcRoot, dest: destRoot, rel: filepath.ToSlash(p.Src), mode: info.Mode().Perm()}}, nil, nil
	}

	err = filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		inPair, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(filepath.Join(p.Src, inPair))
		if Excluded(rel, c.Exclude) {
			skipped = append(skipped, rel)
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		jobs = append(jobs, job{
			src:  path,
			dest: filepath.Join(destRoot, inPair),
			rel:  rel,
			mode: fi.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return jobs, skipped, nil
}

func copyFile(j job) error {
	f, err := os.Open(j.src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", j.src, err)
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(j.dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(j.dest), err)
	}
	if err := atomic.WriteFile(j.dest, f); err != nil {
		return fmt.Errorf("writing %s: %w", j.dest, err)
	}
	if err := os.Chmod(j.dest, j.mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", j.dest, err)
	}
	return nil
}

func (c *Copier) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
