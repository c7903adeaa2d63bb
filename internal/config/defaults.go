package config

import "github.com/ziadkadry99/stitch/internal/assets"

// DefaultPort is the dev server port.
const DefaultPort = 8686

// DefaultAssets are the source directories published alongside the pages.
var DefaultAssets = []AssetPair{
	{Src: "content", Dest: "public/content"},
	{Src: "includes", Dest: "public/includes"},
	{Src: "css", Dest: "public/css"},
	{Src: "blog", Dest: "public/blog"},
}

// DefaultEntries are the site's HTML entry points, keyed by name.
var DefaultEntries = map[string]string{
	"main":         "index.html",
	"blog":         "blog.html",
	"projects":     "projects.html",
	"knowledge":    "knowledge.html",
	"example-post": "blog/example-markdown-post.html",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	entries := make(map[string]string, len(DefaultEntries))
	for k, v := range DefaultEntries {
		entries[k] = v
	}
	return &Config{
		SiteDir:       ".",
		PublishDir:    "public",
		OutDir:        "dist",
		EmptyOutDir:   true,
		CopyPublicDir: true,
		Origin:        "http://localhost:8686",
		Port:          DefaultPort,
		Open:          true,
		HeadURL:       "/includes/head-common.html",
		HeaderURL:     "/includes/header.html",
		FooterURL:     "/includes/footer.html",
		Assets:        append([]AssetPair(nil), DefaultAssets...),
		Exclude:       append([]string(nil), assets.DefaultExcludes...),
		Entries:       entries,
		Diagram: DiagramConfig{
			Mode:    DiagramClient,
			Keyword: "mermaid",
		},
		Markdown: MarkdownConfig{
			HighlightStyle: "github",
		},
	}
}
