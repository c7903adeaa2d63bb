package navigation

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/dom"
	"github.com/ziadkadry99/stitch/internal/fetch"
)

// Outcome reports what Handle did with an event.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeIntercepted
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIntercepted:
		return "intercepted"
	case OutcomeFallback:
		return "fallback"
	default:
		return "ignored"
	}
}

// Swapper moves the content of next into the live document.
type Swapper interface {
	Swap(doc, next *dom.Document) error
}

// DocumentSwapper replaces the title and the body's inner HTML.
type DocumentSwapper struct{}

func (DocumentSwapper) Swap(doc, next *dom.Document) error {
	doc.SetTitle(next.Title())
	body, err := next.BodyHTML()
	if err != nil {
		return fmt.Errorf("reading destination body: %w", err)
	}
	doc.SetBodyHTML(body)
	return nil
}

// Transitions runs update inside an animated transition tagged with types
// and returns once the transition has finished.
type Transitions interface {
	Run(ctx context.Context, types []string, update func() error) error
}

// Initializer re-populates the document after a swap.
type Initializer interface {
	Run(ctx context.Context, doc *dom.Document) error
}

// Fallback performs a default full navigation to u.
type Fallback func(ctx context.Context, u *url.URL) error

// Router handles navigation events for one document.
type Router struct {
	Origin      *url.URL
	Fetcher     fetch.Fetcher
	Swapper     Swapper
	Transitions Transitions
	Initializer Initializer
	Fallback    Fallback
	Logger      *zap.Logger
}

// NewRouter creates a Router with the default swapper and no transitions.
func NewRouter(origin *url.URL, f fetch.Fetcher, init Initializer, fallback Fallback, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		Origin:      origin,
		Fetcher:     f,
		Swapper:     DocumentSwapper{},
		Initializer: init,
		Fallback:    fallback,
		Logger:      logger,
	}
}

// Handle intercepts ev when it is a same-origin page navigation, swaps the
// destination in and re-runs the initializer.
func (r *Router) Handle(ctx context.Context, doc *dom.Document, ev Event) (Outcome, error) {
	if !r.shouldIntercept(ev) {
		return OutcomeIgnored, nil
	}
	log := r.logger().With(zap.String("id", ev.ID), zap.String("url", ev.Destination.String()))

	next, err := r.load(ctx, ev.Destination)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeIgnored, ctx.Err()
		}
		log.Error("failed to load destination", zap.Error(err))
		return r.fallback(ctx, ev.Destination)
	}

	swapper := r.Swapper
	if swapper == nil {
		swapper = DocumentSwapper{}
	}
	update := func() error { return swapper.Swap(doc, next) }

	if r.Transitions != nil {
		types := Classify(ev.Type).TransitionTypes()
		if err := r.Transitions.Run(ctx, types, update); err != nil {
			return OutcomeIntercepted, fmt.Errorf("view transition: %w", err)
		}
	} else if err := update(); err != nil {
		return OutcomeIntercepted, err
	}

	if r.Initializer != nil {
		if err := r.Initializer.Run(ctx, doc); err != nil {
			return OutcomeIntercepted, err
		}
	}
	log.Debug("navigation intercepted", zap.String("type", string(ev.Type)))
	return OutcomeIntercepted, nil
}

// Serve handles events one at a time until events closes or ctx is done.
func (r *Router) Serve(ctx context.Context, doc *dom.Document, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := r.Handle(ctx, doc, ev); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger().Error("navigation failed", zap.String("id", ev.ID), zap.Error(err))
			}
		}
	}
}

func (r *Router) shouldIntercept(ev Event) bool {
	if !ev.CanIntercept || ev.HashChange || ev.DownloadRequest || ev.Destination == nil {
		return false
	}
	return SameOrigin(r.Origin, ev.Destination)
}

// load fetches the destination path with its query string.
func (r *Router) load(ctx context.Context, dest *url.URL) (*dom.Document, error) {
	ref := dest.EscapedPath()
	if ref == "" {
		ref = "/"
	}
	if dest.RawQuery != "" {
		ref += "?" + dest.RawQuery
	}
	body, err := r.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	next, err := dom.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref, err)
	}
	return next, nil
}

func (r *Router) fallback(ctx context.Context, dest *url.URL) (Outcome, error) {
	if r.Fallback == nil {
		return OutcomeFallback, nil
	}
	if err := r.Fallback(ctx, dest); err != nil {
		return OutcomeFallback, fmt.Errorf("full navigation to %s: %w", dest, err)
	}
	return OutcomeFallback, nil
}

func (r *Router) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// SameOrigin reports whether dest shares origin's scheme, host and port.
// Scheme and host are case insensitive and an empty port stands for the
// scheme's default. A relative destination belongs to the current origin.
func SameOrigin(origin, dest *url.URL) bool {
	if !dest.IsAbs() && dest.Host == "" {
		return true
	}
	if origin == nil {
		return false
	}
	return strings.EqualFold(dest.Scheme, origin.Scheme) &&
		strings.EqualFold(dest.Hostname(), origin.Hostname()) &&
		effectivePort(dest) == effectivePort(origin)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	}
	return ""
}
