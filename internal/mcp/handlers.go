package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/stitch/internal/browser"
	"github.com/ziadkadry99/stitch/internal/posts"
)

// handleListPosts merges the requested manifests and lists their posts.
func (s *Server) handleListPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := request.RequireString("sources")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: sources"), nil
	}

	var urls []string
	for _, src := range strings.Split(sources, ",") {
		if src = strings.TrimSpace(src); src != "" {
			urls = append(urls, src)
		}
	}
	if len(urls) == 0 {
		return mcp.NewToolResultError("sources must name at least one manifest"), nil
	}

	list, err := posts.LoadAll(ctx, s.deps.Fetcher, urls)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading posts failed: %v", err)), nil
	}
	list = posts.Limit(list, request.GetInt("max", 0))

	if len(list) == 0 {
		return mcp.NewToolResultText("No posts found."), nil
	}
	return mcp.NewToolResultText(formatPosts(list)), nil
}

// handleRenderPage loads a page headlessly and returns it after initialization.
func (s *Server) handleRenderPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	format := request.GetString("format", "html")
	if format != "html" && format != "markdown" {
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q: must be html or markdown", format)), nil
	}

	sess, err := browser.NewSession(s.deps.Origin, s.deps.Fetcher, s.deps.Init, s.deps.Logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating session: %v", err)), nil
	}
	if err := sess.Open(ctx, path); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading %s failed: %v", path, err)), nil
	}

	doc := sess.Document()
	var out string
	if format == "markdown" {
		out, err = doc.Markdown()
	} else {
		out, err = doc.HTML()
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serializing %s failed: %v", path, err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

// handleRenderMarkdown renders markdown source to HTML.
func (s *Server) handleRenderMarkdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}
	if s.deps.Markdown == nil {
		return mcp.NewToolResultError("markdown rendering is not configured"), nil
	}

	res, err := s.deps.Markdown.Render([]byte(source))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(res.HTML), nil
}

// formatPosts converts posts into a plain text listing for agents.
func formatPosts(list []posts.Post) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d post(s):\n", len(list)))

	for i, p := range list {
		sb.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, p.Title))
		sb.WriteString(fmt.Sprintf("URL: %s\n", p.URL))
		if meta := p.Meta(); meta != "" {
			sb.WriteString(fmt.Sprintf("Meta: %s\n", meta))
		}
		if p.Excerpt != "" {
			sb.WriteString(p.Excerpt)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
