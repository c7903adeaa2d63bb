package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listPostsTool defines the list_posts MCP tool.
var listPostsTool = mcp.NewTool("list_posts",
	mcp.WithDescription("List posts from one or more JSON post manifests, merged and sorted newest first."),
	mcp.WithString("sources",
		mcp.Required(),
		mcp.Description("Comma-separated manifest paths, e.g. /content/posts.json,/content/projects.json"),
	),
	mcp.WithNumber("max",
		mcp.Description("Maximum number of posts to return (default: all)"),
	),
)

// renderPageTool defines the render_page MCP tool.
var renderPageTool = mcp.NewTool("render_page",
	mcp.WithDescription("Load a site page, run page initialization (fragments, post lists, markdown) and return the result."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Page path relative to the site root, e.g. /blog.html"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default html)"),
		mcp.Enum("html", "markdown"),
	),
)

// renderMarkdownTool defines the render_markdown MCP tool.
var renderMarkdownTool = mcp.NewTool("render_markdown",
	mcp.WithDescription("Render markdown source the way the site does, including diagram fences."),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Markdown text"),
	),
)
