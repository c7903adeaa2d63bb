package posts

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/stitch/internal/dom"
	"github.com/ziadkadry99/stitch/internal/fetch"
)

// FailureMessage replaces the list when a manifest can't be loaded.
const FailureMessage = "Kunde inte ladda inlägg."

const cardTemplate = `{{range .}}
      <article class="card" role="listitem">
        <a class="card-link" href="{{.URL}}">
          <h3 class="card-title">{{.Title}}</h3>
          <p class="card-meta">{{.Meta}}</p>
          <p class="card-excerpt">{{.Excerpt}}</p>
        </a>
      </article>
{{end}}`

var cards = template.Must(template.New("cards").Parse(cardTemplate))

// Renderer fills list containers with post cards.
type Renderer struct {
	Fetcher fetch.Fetcher
	Logger  *zap.Logger
}

// NewRenderer creates a Renderer. A nil logger discards diagnostics.
func NewRenderer(f fetch.Fetcher, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{Fetcher: f, Logger: logger}
}

// RenderSingle renders the manifest at url into the container matching
// selector. Any failure replaces the container with FailureMessage.
func (r *Renderer) RenderSingle(ctx context.Context, doc *dom.Document, selector, url string, max int) {
	container, ok := doc.First(selector)
	if !ok {
		return
	}

	list, err := load(ctx, r.Fetcher, url)
	if err != nil {
		r.Logger.Error("failed to load posts", zap.String("url", url), zap.Error(err))
		container.SetHtml(failureHTML())
		return
	}
	r.fill(container, Limit(list, max))
}

// RenderMulti renders the merged manifests at urls (see LoadAll) into the
// container matching selector.
func (r *Renderer) RenderMulti(ctx context.Context, doc *dom.Document, selector string, urls []string, max int) {
	container, ok := doc.First(selector)
	if !ok {
		return
	}

	list, err := LoadAll(ctx, r.Fetcher, urls)
	if err != nil {
		r.Logger.Error("failed to load combined posts", zap.Strings("urls", urls), zap.Error(err))
		container.SetHtml(failureHTML())
		return
	}
	r.fill(container, Limit(list, max))
}

// LoadAll fetches every manifest concurrently and merges them newest first.
// A manifest answering with a non-success status contributes nothing;
// transport and decode failures fail the whole load.
func LoadAll(ctx context.Context, f fetch.Fetcher, urls []string) ([]Post, error) {
	manifests := make([][]Post, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			list, err := load(gctx, f, url)
			if err != nil {
				if fetch.IsStatus(err) {
					return nil
				}
				return err
			}
			manifests[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(manifests...), nil
}

func load(ctx context.Context, f fetch.Fetcher, url string) ([]Post, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	list, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return list, nil
}

func (r *Renderer) fill(container *goquery.Selection, list []Post) {
	markup, err := Cards(list)
	if err != nil {
		r.Logger.Error("failed to render posts", zap.Error(err))
		container.SetHtml(failureHTML())
		return
	}
	container.SetHtml(markup)
}

// Cards renders posts as card markup.
func Cards(list []Post) (string, error) {
	var buf bytes.Buffer
	if err := cards.Execute(&buf, list); err != nil {
		return "", fmt.Errorf("executing card template: %w", err)
	}
	return buf.String(), nil
}

func failureHTML() string {
	return "<p>" + template.HTMLEscapeString(FailureMessage) + "</p>"
}
