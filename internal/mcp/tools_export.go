package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"assetdash/internal/service"
)

func (s *Server) registerExportTools() {
	s.mcp.AddTool(mcp.NewTool("export_asset",
		mcp.WithDescription("🛑 DESTRUCTIVE: Write every record set of an asset to the configured export database, one table per record set. In replace mode existing tables are dropped first."),
		mcp.WithString("asset", mcp.Description("Asset name"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleExportAsset)

	s.mcp.AddTool(mcp.NewTool("list_export_runs",
		mcp.WithDescription("List recent export runs, newest first"),
		mcp.WithString("asset", mcp.Description("Only runs of this asset (optional)")),
		mcp.WithNumber("limit", mcp.Description("Maximum runs to return (default 20)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListExportRuns)
}

func (s *Server) handleExportAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	asset, err := requireString(req, "asset")
	if err != nil {
		return nil, err
	}
	run, err := s.exports.ExportAsset(ctx, asset)
	switch {
	case errors.Is(err, service.ErrExportDisabled):
		return textResult("Export is not configured: set export.driver in the config file"), nil
	case errors.Is(err, service.ErrExportRunning):
		return textResult(fmt.Sprintf("An export of %s is already running", asset)), nil
	case err != nil && run == nil:
		return nil, fmt.Errorf("export asset: %w", err)
	}
	// A failed run is still reported; its error is part of the record.
	return jsonResult(run)
}

func (s *Server) handleListExportRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs, err := s.exports.ListRuns(req.GetString("asset", ""), req.GetInt("limit", 20))
	if err != nil {
		return nil, fmt.Errorf("list export runs: %w", err)
	}
	return jsonResult(runs)
}
