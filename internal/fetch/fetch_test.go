package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/includes/header.html":
			w.Write([]byte("<nav>hi</nav>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL, 0)
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), "/includes/header.html")
	require.NoError(t, err)
	assert.Equal(t, "<nav>hi</nav>", string(body))

	_, err = f.Fetch(context.Background(), "/missing.json")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsStatus(err))
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	origin := srv.URL
	srv.Close()

	f, err := NewHTTPFetcher(origin, 0)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "/x")
	require.Error(t, err)
	assert.False(t, IsStatus(err))
}

func TestNewHTTPFetcherRejectsRelativeOrigin(t *testing.T) {
	_, err := NewHTTPFetcher("/just/a/path", 0)
	assert.Error(t, err)
}

func TestFSFetcher(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":           {Data: []byte("home")},
		"blog/index.html":      {Data: []byte("blog")},
		"content/about.md":     {Data: []byte("# About")},
		"includes/footer.html": {Data: []byte("<footer></footer>")},
	}
	f := &FSFetcher{FS: fsys}
	ctx := context.Background()

	tests := []struct {
		ref, want string
	}{
		{"/", "home"},
		{"/blog/", "blog"},
		{"/content/about.md", "# About"},
		{"/includes/footer.html?v=2", "<footer></footer>"},
		{"/../includes/footer.html", "<footer></footer>"},
	}
	for _, tt := range tests {
		got, err := f.Fetch(ctx, tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, string(got), tt.ref)
	}

	_, err := f.Fetch(ctx, "/nope.json")
	assert.True(t, IsNotFound(err))
}

func TestFSFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&FSFetcher{FS: fstest.MapFS{}}).Fetch(ctx, "/x")
	assert.ErrorIs(t, err, context.Canceled)
}
