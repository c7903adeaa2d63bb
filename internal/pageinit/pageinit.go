// Package pageinit populates a freshly loaded (or freshly swapped) page:
// shared fragments, post and project lists, and markdown-sourced content.
package pageinit

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/diagrams"
	"github.com/ziadkadry99/stitch/internal/dom"
	"github.com/ziadkadry99/stitch/internal/fetch"
	"github.com/ziadkadry99/stitch/internal/fragment"
	"github.com/ziadkadry99/stitch/internal/markdown"
	"github.com/ziadkadry99/stitch/internal/posts"
)

// Messages shown in place of markdown content that failed to load.
const (
	AsyncFailureMessage = "Unable to load content."
	PostFailureMessage  = "Unable to load post content."
)

// Includes are the shared fragment locations.
type Includes struct {
	Head   string
	Header string
	Footer string
}

// DefaultIncludes are the site's conventional fragment paths.
func DefaultIncludes() Includes {
	return Includes{
		Head:   "/includes/head-common.html",
		Header: "/includes/header.html",
		Footer: "/includes/footer.html",
	}
}

// Initializer runs the page setup steps in order. Every step tolerates a
// missing target and contains its own failures, so Run can be repeated on
// the same document.
type Initializer struct {
	Includes  Includes
	Fetcher   fetch.Fetcher
	Fragments *fragment.Loader
	Posts     *posts.Renderer
	Markdown  *markdown.Renderer
	Diagrams  diagrams.Hook
	Logger    *zap.Logger
}

// New wires an Initializer around a single fetcher.
func New(f fetch.Fetcher, inc Includes, md *markdown.Renderer, hook diagrams.Hook, logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hook == nil {
		hook = diagrams.Noop{}
	}
	if md == nil {
		md = markdown.New(markdown.DefaultOptions())
	}
	return &Initializer{
		Includes:  inc,
		Fetcher:   f,
		Fragments: fragment.NewLoader(f, logger),
		Posts:     posts.NewRenderer(f, logger),
		Markdown:  md,
		Diagrams:  hook,
		Logger:    logger,
	}
}

// LoadHead applies the shared head fragment. Browsers do this before the
// document finishes loading, so it is separate from Run.
func (in *Initializer) LoadHead(ctx context.Context, doc *dom.Document) {
	in.Fragments.LoadHead(ctx, doc, in.Includes.Head)
}

// Run populates doc. It returns only when ctx is cancelled; content
// failures are logged and shown in the page.
func (in *Initializer) Run(ctx context.Context, doc *dom.Document) error {
	in.Fragments.LoadComponent(ctx, doc, dom.HeaderPlaceholder, in.Includes.Header)
	in.Fragments.LoadComponent(ctx, doc, dom.FooterPlaceholder, in.Includes.Footer)
	in.Fragments.SetYear(doc)
	if err := ctx.Err(); err != nil {
		return err
	}

	in.renderPostList(ctx, doc)
	if err := ctx.Err(); err != nil {
		return err
	}

	if grid, ok := doc.First(dom.ProjectsGrid); ok {
		if src := grid.AttrOr(dom.AttrJSON, ""); src != "" {
			in.Posts.RenderSingle(ctx, doc, dom.ProjectsGrid, src, 0)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var cancelled bool
	doc.Find(dom.MarkdownAsync).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		in.renderMarkdown(ctx, doc, el, AsyncFailureMessage)
		cancelled = ctx.Err() != nil
		return !cancelled
	})
	if cancelled {
		return ctx.Err()
	}

	if post, ok := doc.First(dom.MarkdownPost); ok {
		in.renderMarkdown(ctx, doc, post, PostFailureMessage)
	}
	return ctx.Err()
}

func (in *Initializer) renderPostList(ctx context.Context, doc *dom.Document) {
	list, ok := doc.First(dom.PostList)
	if !ok {
		return
	}
	max := parseMax(list.AttrOr(dom.AttrMax, ""))

	if multi := list.AttrOr(dom.AttrJSONMultiple, ""); multi != "" {
		in.Posts.RenderMulti(ctx, doc, dom.PostListTarget, splitSources(multi), max)
		return
	}
	if single := list.AttrOr(dom.AttrJSON, ""); single != "" {
		in.Posts.RenderSingle(ctx, doc, dom.PostListTarget, single, max)
	}
}

func (in *Initializer) renderMarkdown(ctx context.Context, doc *dom.Document, el *goquery.Selection, failure string) {
	src := el.AttrOr(dom.AttrSrc, "")
	if src == "" {
		return
	}

	body, err := in.Fetcher.Fetch(ctx, src)
	if err != nil {
		el.SetText(failure)
		in.Logger.Error("failed to load markdown", zap.String("src", src), zap.Error(err))
		return
	}
	res, err := in.Markdown.Render(body)
	if err != nil {
		el.SetText(failure)
		in.Logger.Error("failed to render markdown", zap.String("src", src), zap.Error(err))
		return
	}
	el.SetHtml(res.HTML)

	if res.Diagrams > 0 {
		if err := in.Diagrams.Run(ctx, doc); err != nil {
			in.Logger.Warn("diagram pass interrupted", zap.String("src", src), zap.Error(err))
		}
	}
}

// splitSources splits a comma separated data-json-multiple value.
func splitSources(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseMax reads data-max from its leading digits ("5", "5 posts"). Anything
// without a positive leading integer means no limit.
func parseMax(v string) int {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}
