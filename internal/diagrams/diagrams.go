// Package diagrams turns diagram containers left by the markdown renderer
// into rendered diagrams once they are attached to a document.
package diagrams

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/dom"
)

// Rendering modes accepted by New.
const (
	ModeClient = "client"
	ModeCLI    = "cli"
	ModeNone   = "none"
)

// DefaultScriptURL is the Mermaid ES module loaded in client mode.
const DefaultScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs"

// Hook runs after rendered content has been attached to doc.
type Hook interface {
	Run(ctx context.Context, doc *dom.Document) error
}

// Renderer turns diagram source into markup (usually SVG).
type Renderer interface {
	Render(ctx context.Context, source string) (string, error)
}

// Config selects and configures a Hook.
type Config struct {
	Mode      string
	Keyword   string
	Command   string
	ScriptURL string
}

// New returns the Hook for cfg.Mode.
func New(cfg Config, logger *zap.Logger) (Hook, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	keyword := cfg.Keyword
	if keyword == "" {
		keyword = dom.DiagramClass
	}

	switch cfg.Mode {
	case "", ModeClient:
		script := cfg.ScriptURL
		if script == "" {
			script = DefaultScriptURL
		}
		return &Hydrator{Keyword: keyword, ScriptURL: script}, nil
	case ModeCLI:
		command := cfg.Command
		if command == "" {
			command = "mmdc"
		}
		return &Pass{Renderer: &MermaidCLI{Command: command}, Keyword: keyword, Logger: logger}, nil
	case ModeNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown diagram mode %q: must be one of client, cli, none", cfg.Mode)
	}
}

// Pass renders every unprocessed container in place and marks it with
// data-processed so later runs skip it.
type Pass struct {
	Renderer Renderer
	Keyword  string
	Logger   *zap.Logger
}

func (p *Pass) Run(ctx context.Context, doc *dom.Document) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var rendered, failed int
	doc.Find(pendingSelector(p.Keyword)).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		out, err := p.Renderer.Render(ctx, s.Text())
		if err != nil {
			failed++
			logger.Error("failed to render diagram", zap.Int("index", i), zap.Error(err))
			return true
		}
		s.SetHtml(out)
		s.SetAttr(dom.ProcessedMarker, "true")
		rendered++
		return true
	})
	if rendered+failed > 0 {
		logger.Debug("diagram pass finished", zap.Int("rendered", rendered), zap.Int("failed", failed))
	}
	return ctx.Err()
}

// Hydrator leaves containers for Mermaid.js and makes sure the page loads
// it exactly once.
type Hydrator struct {
	Keyword   string
	ScriptURL string
}

const hydrateScript = `<script type="module" data-diagrams>
import mermaid from %q;
mermaid.initialize({ startOnLoad: false, theme: "default" });
await mermaid.run({ querySelector: %q });
</script>`

func (h *Hydrator) Run(ctx context.Context, doc *dom.Document) error {
	if doc.Find(pendingSelector(h.Keyword)).Length() == 0 {
		return nil
	}
	if doc.Find("script[data-diagrams]").Length() > 0 {
		return nil
	}
	doc.Find("body").First().AppendHtml(fmt.Sprintf(hydrateScript, h.ScriptURL, "."+h.Keyword))
	return ctx.Err()
}

// Noop disables diagram rendering.
type Noop struct{}

func (Noop) Run(ctx context.Context, doc *dom.Document) error { return nil }

func pendingSelector(keyword string) string {
	return "." + keyword + ":not([" + dom.ProcessedMarker + "])"
}

// MermaidCLI renders diagrams with the Mermaid command line tool.
type MermaidCLI struct {
	Command string
	Args    []string
}

func (m *MermaidCLI) Render(ctx context.Context, source string) (string, error) {
	dir, err := os.MkdirTemp("", "stitch-diagram-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "diagram.mmd")
	out := filepath.Join(dir, "diagram.svg")
	if err := os.WriteFile(in, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("writing diagram source: %w", err)
	}

	args := append([]string{"-i", in, "-o", out}, m.Args...)
	cmd := exec.CommandContext(ctx, m.Command, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("running %s: %w: %s", m.Command, err, strings.TrimSpace(string(output)))
	}

	svg, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("reading rendered diagram: %w", err)
	}
	return string(svg), nil
}
