// Package fetch loads site resources (fragments, manifests, markdown, pages)
// either over HTTP or from a local directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes behind a site-relative reference such as
// "/includes/header.html".
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsStatus reports whether err came from a non-success response rather than
// a transport failure.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// HTTPFetcher resolves references against an origin and GETs them.
type HTTPFetcher struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher for origin. A zero timeout leaves
// requests unbounded apart from the caller's context.
func NewHTTPFetcher(origin string, timeout time.Duration) (*HTTPFetcher, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin %q: %w", origin, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute URL", origin)
	}
	return &HTTPFetcher{
		Base:   base,
		Client: &http.Client{Timeout: timeout},
	}, nil
}

// Resolve turns a reference into an absolute URL.
func (f *HTTPFetcher) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	return f.Base.ResolveReference(u), nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := f.Resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return body, nil
}

// FSFetcher serves references out of a file system, typically the site
// source directory. Missing files surface as 404 StatusErrors so callers
// handle both fetchers the same way.
type FSFetcher struct {
	FS fs.FS
}

func (f *FSFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := fsName(ref)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StatusError{URL: ref, StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}
	return data, nil
}

// fsName maps "/blog/post.md?x=1" to "blog/post.md"; directory-like paths
// resolve to their index.html the way a static file server would.
func fsName(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid path %q", ref)
	}
	return name, nil
}
