// Package fragment stitches shared HTML fragments (head tags, header,
// footer) into placeholder elements.
package fragment

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/dom"
	"github.com/ziadkadry99/stitch/internal/fetch"
)

// Loader fetches fragments and injects them into a document.
type Loader struct {
	Fetcher fetch.Fetcher
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewLoader creates a Loader. A nil logger discards diagnostics.
func NewLoader(f fetch.Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Fetcher: f, Logger: logger, Now: time.Now}
}

// LoadHead splices the elements of the head fragment in before the
// <head-placeholder> element and then removes the placeholder. On failure
// the placeholder stays where it is.
func (l *Loader) LoadHead(ctx context.Context, doc *dom.Document, url string) {
	placeholder, ok := doc.First(dom.HeadPlaceholder)
	if !ok {
		return
	}

	body, err := l.Fetcher.Fetch(ctx, url)
	if err != nil {
		l.Logger.Error("failed to load common head", zap.String("url", url), zap.Error(err))
		return
	}
	elems, err := dom.ParseElements(string(body))
	if err != nil {
		l.Logger.Error("failed to load common head", zap.String("url", url), zap.Error(err))
		return
	}

	if len(elems) > 0 {
		placeholder.BeforeNodes(elems...)
	}
	placeholder.Remove()
}

// LoadComponent replaces the contents of the element matching selector with
// the fragment at url. Loading the footer also refreshes the year display.
func (l *Loader) LoadComponent(ctx context.Context, doc *dom.Document, selector, url string) {
	el, ok := doc.First(selector)
	if !ok {
		return
	}

	body, err := l.Fetcher.Fetch(ctx, url)
	if err != nil {
		l.Logger.Error("failed to load component",
			zap.String("selector", selector), zap.String("url", url), zap.Error(err))
		return
	}
	el.SetHtml(string(body))

	if selector == dom.FooterPlaceholder {
		l.SetYear(doc)
	}
}

// SetYear writes the current four-digit year into the #year element, if the
// page has one.
func (l *Loader) SetYear(doc *dom.Document) {
	y, ok := doc.First(dom.YearElement)
	if !ok {
		return
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	y.SetText(strconv.Itoa(now().Year()))
}
