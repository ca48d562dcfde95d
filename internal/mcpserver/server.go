// Package mcpserver exposes the registry-backed tools to MCP clients over
// stdio, so editors and other agents can call the sales operations directly.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// Server wraps an MCP server whose tools proxy to schema.Tool values.
type Server struct {
	mcp    *server.MCPServer
	defs   []mcp.Tool
	logger *slog.Logger
}

// New registers every tool in ts under its own name and JSON Schema.
func New(name, version string, ts []schema.Tool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
			server.WithInstructions("Sales platform operations: products, sellers, orders and sales forecasts. "+
				"Every tool validates its arguments before calling the platform."),
		),
		logger: logger,
	}
	for _, t := range ts {
		def := mcp.NewToolWithRawSchema(t.Name(), t.Description(), t.Parameters())
		s.mcp.AddTool(def, s.handler(t))
		s.defs = append(s.defs, def)
	}
	return s
}

// Tools returns the registered tool definitions in registration order.
func (s *Server) Tools() []mcp.Tool { return s.defs }

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp: serving over stdio", "tools", len(s.defs))
	return server.ServeStdio(s.mcp)
}

func (s *Server) handler(t schema.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := t.Execute(ctx, req.GetArguments())
		if err != nil {
			s.logger.Warn("mcp: tool call failed", "tool", t.Name(), "err", err)
			if out == "" {
				out = err.Error()
			}
			return mcp.NewToolResultError(out), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
