package posts

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ziadkadry99/stitch/internal/dom"
	"github.com/ziadkadry99/stitch/internal/fetch"
)

const listPage = `<html><body><div class="post-list"><p>loading…</p></div></body></html>`

func newRenderer(fsys fstest.MapFS) (*Renderer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.ErrorLevel)
	return NewRenderer(&fetch.FSFetcher{FS: fsys}, zap.New(core)), logs
}

func page(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(listPage)
	require.NoError(t, err)
	return doc
}

func TestRenderSingleEndToEnd(t *testing.T) {
	r, logs := newRenderer(fstest.MapFS{
		"posts.json": {Data: []byte(`[{"url":"/a","title":"A","tags":["x","y"],"excerpt":"e1"}]`)},
	})
	doc := page(t)

	r.RenderSingle(context.Background(), doc, ".post-list", "/posts.json", 0)

	cards := doc.Find(".post-list .card")
	require.Equal(t, 1, cards.Length())
	href, _ := cards.Find("a.card-link").Attr("href")
	assert.Equal(t, "/a", href)
	assert.Equal(t, "A", cards.Find(".card-title").Text())
	assert.Equal(t, "x · y", cards.Find(".card-meta").Text())
	assert.Equal(t, "e1", cards.Find(".card-excerpt").Text())
	assert.NotContains(t, doc.Find(".post-list").Text(), "loading")
	assert.Equal(t, 0, logs.Len())
}

func TestRenderSingleNotFound(t *testing.T) {
	r, logs := newRenderer(fstest.MapFS{})
	doc := page(t)

	r.RenderSingle(context.Background(), doc, ".post-list", "/posts.json", 0)

	assert.Equal(t, 0, doc.Find(".card").Length())
	assert.Equal(t, FailureMessage, strings.TrimSpace(doc.Find(".post-list p").Text()))
	assert.Equal(t, 1, logs.Len())
}

func TestRenderSingleMalformedJSON(t *testing.T) {
	r, _ := newRenderer(fstest.MapFS{"posts.json": {Data: []byte(`{"oops"`)}})
	doc := page(t)

	r.RenderSingle(context.Background(), doc, ".post-list", "/posts.json", 0)

	assert.Equal(t, FailureMessage, doc.Find(".post-list p").Text())
}

func TestRenderSingleCountsAndLimits(t *testing.T) {
	manifest := `[
		{"url":"/1","title":"1","tags":[]},
		{"url":"/2","title":"2","tags":[]},
		{"url":"/3","title":"3","tags":[]},
		{"url":"/4","title":"4","tags":[]}
	]`
	r, _ := newRenderer(fstest.MapFS{"posts.json": {Data: []byte(manifest)}})

	for _, tt := range []struct{ max, want int }{{0, 4}, {2, 2}, {10, 4}, {-1, 4}} {
		doc := page(t)
		r.RenderSingle(context.Background(), doc, ".post-list", "/posts.json", tt.max)
		got := doc.Find(".card")
		require.Equal(t, tt.want, got.Length(), "max=%d", tt.max)
		got.Each(func(i int, s *goquery.Selection) {
			href, _ := s.Find("a").Attr("href")
			assert.Equal(t, "/"+string(rune('1'+i)), href, "order preserved")
		})
	}
}

func TestRenderMultiMergesAndDegrades(t *testing.T) {
	r, logs := newRenderer(fstest.MapFS{
		"blog.json": {Data: []byte(`[
			{"url":"/b1","title":"b1","date":"2024-01-10","tags":["go"]},
			{"url":"/b2","title":"b2","date":"2023-06-01","tags":[]}
		]`)},
		"projects.json": {Data: []byte(`[
			{"url":"/p1","title":"p1","date":"2024-03-02","tags":["x"]},
			{"url":"/p2","title":"p2","tags":["undated"]}
		]`)},
	})
	doc := page(t)

	r.RenderMulti(context.Background(), doc, ".post-list",
		[]string{"/blog.json", "/missing.json", "/projects.json"}, 0)

	var got []string
	doc.Find(".card a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		got = append(got, href)
	})
	assert.Equal(t, []string{"/p1", "/b1", "/b2", "/p2"}, got)
	assert.Equal(t, 0, logs.Len(), "a 404 source is not a render failure")
}

func TestRenderMultiLimit(t *testing.T) {
	r, _ := newRenderer(fstest.MapFS{
		"a.json": {Data: []byte(`[{"url":"/a1","title":"a1","date":"2020-01-01","tags":[]}]`)},
		"b.json": {Data: []byte(`[{"url":"/b1","title":"b1","date":"2021-01-01","tags":[]},{"url":"/b2","title":"b2","date":"2019-01-01","tags":[]}]`)},
	})
	doc := page(t)

	r.RenderMulti(context.Background(), doc, ".post-list", []string{"/a.json", "/b.json"}, 2)

	require.Equal(t, 2, doc.Find(".card").Length())
	assert.Equal(t, "b1", doc.Find(".card-title").First().Text())
}

func TestRenderMultiDecodeFailure(t *testing.T) {
	r, logs := newRenderer(fstest.MapFS{
		"a.json": {Data: []byte(`[]`)},
		"b.json": {Data: []byte(`not json`)},
	})
	doc := page(t)

	r.RenderMulti(context.Background(), doc, ".post-list", []string{"/a.json", "/b.json"}, 0)

	assert.Equal(t, FailureMessage, doc.Find(".post-list p").Text())
	assert.Equal(t, 1, logs.Len())
}

func TestMissingContainerIsSilent(t *testing.T) {
	r, logs := newRenderer(fstest.MapFS{})
	doc, err := dom.ParseString(`<html><body></body></html>`)
	require.NoError(t, err)

	r.RenderSingle(context.Background(), doc, ".post-list", "/posts.json", 0)
	r.RenderMulti(context.Background(), doc, ".post-list", []string{"/posts.json"}, 0)

	assert.Equal(t, 0, logs.Len())
}

func TestMeta(t *testing.T) {
	tests := []struct {
		post Post
		want string
	}{
		{Post{Date: "2024-01-02", Tags: []string{"a", "b"}}, "2024-01-02 • a · b"},
		{Post{Tags: []string{"a"}}, "a"},
		{Post{Date: "2024-01-02", Tags: []string{}}, "2024-01-02"},
		{Post{Tags: []string{}}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.post.Meta())
	}
}

func TestDecodeNilTags(t *testing.T) {
	list, err := Decode(strings.NewReader(`[{"url":"/a","title":"A"},{"url":"/b","title":"B","tags":null}]`))
	require.NoError(t, err)
	for _, p := range list {
		assert.NotNil(t, p.Tags)
		assert.Empty(t, p.Tags)
	}
}

func TestSortUndatedLast(t *testing.T) {
	list := []Post{
		{URL: "/none"},
		{URL: "/bad", Date: "someday"},
		{URL: "/old", Date: "2001-01-01"},
		{URL: "/new", Date: "2024-05-05T10:00:00Z"},
	}
	Sort(list)
	var order []string
	for _, p := range list {
		order = append(order, p.URL)
	}
	assert.Equal(t, []string{"/new", "/old", "/none", "/bad"}, order)
}

func TestCardsEscape(t *testing.T) {
	out, err := Cards([]Post{{URL: "/x", Title: "<b>bold</b>", Tags: []string{}}})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
}

func TestLoadAll(t *testing.T) {
	f := &fetch.FSFetcher{FS: fstest.MapFS{
		"a.json": {Data: []byte(`[{"url":"/a","title":"a","date":"2022-05-01"}]`)},
		"b.json": {Data: []byte(`[{"url":"/b","title":"b","date":"2023-05-01","tags":["t"]}]`)},
	}}

	list, err := LoadAll(context.Background(), f, []string{"/a.json", "/gone.json", "/b.json"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "/b", list[0].URL)
	assert.Equal(t, []string{}, list[1].Tags)

	empty, err := LoadAll(context.Background(), f, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
