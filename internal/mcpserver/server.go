// Package mcpserver exposes the answer pipeline and the scheme catalog as
// MCP tools over stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Server wraps the MCP server with the schemeqa tools registered
type Server struct {
	MCPServer *server.MCPServer
	logger    *zap.Logger
}

// New creates the server and registers both tools
func New(version string, answerer Answerer, catalog Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		MCPServer: server.NewMCPServer("schemeqa", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		logger: logger,
	}
	s.MCPServer.AddTools(Tools(answerer, catalog, logger)...)
	return s
}

// Tools returns the tool definitions with their handlers
func Tools(answerer Answerer, catalog Catalog, logger *zap.Logger) []server.ServerTool {
	return []server.ServerTool{
		{Tool: AskSpec(), Handler: AskHandler(answerer, logger)},
		{Tool: ListSpec(), Handler: ListHandler(catalog, logger)},
	}
}

// ServeStdio blocks serving MCP requests on stdin/stdout
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.MCPServer)
}
