// Package markdown converts markdown sources into page content, turning
// diagram fences into containers for the diagram pass.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Options configures a Renderer. It is copied into the Renderer on
// construction and never changes afterwards.
type Options struct {
	DiagramKeyword string
	HardWraps      bool
	GFM            bool
	HeadingIDs     bool
	Unsafe         bool
	HighlightStyle string
}

// DefaultOptions mirrors the site's marked.js setup: breaks, gfm, header ids,
// raw HTML allowed.
func DefaultOptions() Options {
	return Options{
		DiagramKeyword: "mermaid",
		HardWraps:      true,
		GFM:            true,
		HeadingIDs:     true,
		Unsafe:         true,
		HighlightStyle: "github",
	}
}

// Result is the rendered content plus the number of diagram containers in it.
type Result struct {
	HTML     string
	Diagrams int
}

// Renderer is safe for concurrent use.
type Renderer struct {
	opts Options
	md   goldmark.Markdown
}

// New builds a Renderer from opts.
func New(opts Options) *Renderer {
	if opts.DiagramKeyword == "" {
		opts.DiagramKeyword = "mermaid"
	}

	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}

	var parserOpts []parser.Option
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(newFenceRenderer(opts), 100)),
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	return &Renderer{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parserOpts...),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
}

// Options returns the configuration the Renderer was built with.
func (r *Renderer) Options() Options { return r.opts }

// Render converts src and wraps the output in <div class="content">.
func (r *Renderer) Render(src []byte) (Result, error) {
	doc := r.md.Parser().Parse(text.NewReader(src))

	diagrams := 0
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fence, ok := n.(*ast.FencedCodeBlock); ok && isDiagram(fence, src, r.opts.DiagramKeyword) {
			diagrams++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("walking markdown: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`<div class="content">`)
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return Result{}, fmt.Errorf("converting markdown: %w", err)
	}
	buf.WriteString(`</div>`)

	return Result{HTML: buf.String(), Diagrams: diagrams}, nil
}

func isDiagram(n *ast.FencedCodeBlock, source []byte, keyword string) bool {
	return string(n.Language(source)) == keyword
}

// fenceRenderer renders diagram fences as <div class="KEYWORD"> containers
// holding the literal block text and hands every other fence to the
// syntax highlighter.
type fenceRenderer struct {
	keyword  string
	fallback renderer.NodeRendererFunc
}

func newFenceRenderer(opts Options) *fenceRenderer {
	var hlOpts []highlighting.Option
	if opts.HighlightStyle != "" {
		hlOpts = append(hlOpts, highlighting.WithStyle(opts.HighlightStyle))
	}
	capture := &fenceCapture{}
	highlighting.NewHTMLRenderer(hlOpts...).RegisterFuncs(capture)
	return &fenceRenderer{keyword: opts.DiagramKeyword, fallback: capture.fn}
}

func (r *fenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fenceRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	if !isDiagram(n, source, r.keyword) {
		return r.fallback(w, source, node, entering)
	}
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<div class="`)
	_, _ = w.Write(util.EscapeHTML([]byte(r.keyword)))
	_, _ = w.WriteString(`">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

// fenceCapture grabs the highlighter's fenced code block func so it can be
// called as a fallback.
type fenceCapture struct {
	fn renderer.NodeRendererFunc
}

func (c *fenceCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if kind == ast.KindFencedCodeBlock {
		c.fn = fn
	}
}
