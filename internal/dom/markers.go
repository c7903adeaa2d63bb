package dom

// Placeholders and containers the page runtime looks for. Pages opt into a
// feature by carrying the matching element; absence means the page doesn't
// use that feature.
const (
	HeadPlaceholder   = "head-placeholder"
	HeaderPlaceholder = "#header-placeholder"
	FooterPlaceholder = "#footer-placeholder"
	YearElement       = "#year"

	PostList        = ".post-list[data-json], .post-list[data-json-multiple]"
	PostListTarget  = ".post-list"
	ProjectsGrid    = ".projects-grid[data-json]"
	MarkdownAsync   = ".markdown-async[data-src]"
	MarkdownPost    = ".markdown-post[data-src]"
	DiagramClass    = "mermaid"
	ProcessedMarker = "data-processed"
)

// Data attributes carried by the containers above.
const (
	AttrJSON         = "data-json"
	AttrJSONMultiple = "data-json-multiple"
	AttrMax          = "data-max"
	AttrSrc          = "data-src"
)
