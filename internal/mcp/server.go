package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stitch/internal/fetch"
	"github.com/ziadkadry99/stitch/internal/markdown"
	"github.com/ziadkadry99/stitch/internal/pageinit"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the site runtime pieces the tools run on.
type Deps struct {
	Origin   string
	Fetcher  fetch.Fetcher
	Init     *pageinit.Initializer
	Markdown *markdown.Renderer
	Logger   *zap.Logger
}

// Server wraps an MCP server that exposes site inspection tools.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"stitch",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listPostsTool, s.handleListPosts)
	s.mcp.AddTool(renderPageTool, s.handleRenderPage)
	s.mcp.AddTool(renderMarkdownTool, s.handleRenderMarkdown)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
