package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/nihonto-search/internal/search"
)

const (
	// ServerName is the MCP server name
	ServerName = "nihonto-search"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	search *search.Service
}

// NewServer creates a new MCP server instance over the search service
func NewServer(svc *search.Service) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		search: svc,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchListingsTool(), s.handleSearchListings)
	s.mcp.AddTool(getFacetsTool(), s.handleGetFacets)
	s.mcp.AddTool(listDealersTool(), s.handleListDealers)
}
