package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"assetdash/internal/service"
)

// Server is the MCP server for assetdash.
// It exposes tools and resources so AI agents can browse assets, read their
// tables and trigger exports.
type Server struct {
	mcp     *server.MCPServer
	assets  *service.AssetService
	exports *service.ExportService
	logger  *slog.Logger
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Assets  *service.AssetService
	Exports *service.ExportService
	Logger  *slog.Logger
	Version string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{
		assets:  deps.Assets,
		exports: deps.Exports,
		logger:  deps.Logger,
	}

	s.mcp = server.NewMCPServer(
		"assetdash-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerAssetTools()
	s.registerExportTools()
	s.registerResources()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp: starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// requireString returns a non-empty string argument.
func requireString(req mcp.CallToolRequest, key string) (string, error) {
	v := req.GetString(key, "")
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func boolPtr(v bool) *bool { return &v }
