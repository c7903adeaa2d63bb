// Package browser hosts the page runtime the way a browser tab would: it
// loads a page, initializes it, and routes later navigations.
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/dom"
	"github.com/ziadkadry99/stitch/internal/fetch"
	"github.com/ziadkadry99/stitch/internal/navigation"
	"github.com/ziadkadry99/stitch/internal/pageinit"
)

var (
	// ErrNotOpen is returned when navigating before a page was opened.
	ErrNotOpen = errors.New("no page open")
	// ErrNoHistory is returned by Back on the first page.
	ErrNoHistory = errors.New("no previous page")
	// ErrCrossOrigin is returned when a navigation would leave the site.
	ErrCrossOrigin = errors.New("destination is on another origin")
)

// Session is one headless tab on a site.
type Session struct {
	Origin  *url.URL
	Fetcher fetch.Fetcher
	Init    *pageinit.Initializer
	Router  *navigation.Router
	Logger  *zap.Logger

	mu      sync.Mutex
	doc     *dom.Document
	history []*url.URL
}

// NewSession creates a session on origin. Navigations that cannot be
// intercepted fall back to a full page load.
func NewSession(origin string, f fetch.Fetcher, init *pageinit.Initializer, logger *zap.Logger) (*Session, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute URL", origin)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{Origin: u, Fetcher: f, Init: init, Logger: logger}
	var reinit navigation.Initializer
	if init != nil {
		reinit = init
	}
	s.Router = navigation.NewRouter(u, f, reinit, s.load, logger)
	return s, nil
}

// Open performs a full page load of ref and starts a new history.
func (s *Session) Open(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := resolveFrom(s.Origin, ref)
	if err != nil {
		return err
	}

	if err := s.load(ctx, u); err != nil {
		return err
	}
	s.history = []*url.URL{u}
	return nil
}

// Navigate follows a link to href.
func (s *Session) Navigate(ctx context.Context, href string) (navigation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return navigation.OutcomeIgnored, ErrNotOpen
	}
	u, err := s.resolve(href)
	if err != nil {
		return navigation.OutcomeIgnored, err
	}
	ev := navigation.NewEvent(u, navigation.Push)
	ev.HashChange = isHashChange(s.current(), u)

	out, err := s.Router.Handle(ctx, s.doc, ev)
	if err != nil {
		return out, err
	}
	if out == navigation.OutcomeIgnored && !ev.HashChange {
		return out, fmt.Errorf("%s: %w", u, ErrCrossOrigin)
	}
	s.history = append(s.history, u)
	return out, nil
}

// Back returns to the previous page.
func (s *Session) Back(ctx context.Context) (navigation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return navigation.OutcomeIgnored, ErrNotOpen
	}
	if len(s.history) < 2 {
		return navigation.OutcomeIgnored, ErrNoHistory
	}
	from, to := s.history[len(s.history)-1], s.history[len(s.history)-2]
	ev := navigation.NewEvent(to, navigation.Traverse)
	ev.HashChange = isHashChange(from, to)

	out, err := s.Router.Handle(ctx, s.doc, ev)
	if err != nil {
		return out, err
	}
	s.history = s.history[:len(s.history)-1]
	return out, nil
}

// Reload re-fetches the current page through the router.
func (s *Session) Reload(ctx context.Context) (navigation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return navigation.OutcomeIgnored, ErrNotOpen
	}
	return s.Router.Handle(ctx, s.doc, navigation.NewEvent(s.current(), navigation.Reload))
}

// Document returns the live document, or nil before Open.
func (s *Session) Document() *dom.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// URL returns the current location.
func (s *Session) URL() *url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// History returns the visited locations, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	for i, u := range s.history {
		out[i] = u.String()
	}
	return out
}

// load replaces the document with a freshly loaded page. Callers hold mu.
func (s *Session) load(ctx context.Context, u *url.URL) error {
	body, err := s.Fetcher.Fetch(ctx, u.RequestURI())
	if err != nil {
		return fmt.Errorf("loading %s: %w", u, err)
	}
	doc, err := dom.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", u, err)
	}
	if s.Init != nil {
		s.Init.LoadHead(ctx, doc)
		if err := s.Init.Run(ctx, doc); err != nil {
			return err
		}
	}
	s.doc = doc
	s.Logger.Debug("page loaded", zap.String("url", u.String()))
	return nil
}

// resolve resolves ref against the current location. Callers hold mu.
func (s *Session) resolve(ref string) (*url.URL, error) {
	base := s.Origin
	if cur := s.current(); cur != nil {
		base = cur
	}
	return resolveFrom(base, ref)
}

func resolveFrom(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", ref, err)
	}
	return base.ResolveReference(r), nil
}

func (s *Session) current() *url.URL {
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1]
}

func isHashChange(from, to *url.URL) bool {
	if from == nil || to.Fragment == "" {
		return false
	}
	return navigation.SameOrigin(from, to) &&
		from.Path == to.Path && from.RawQuery == to.RawQuery
}
