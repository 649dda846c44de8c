package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerAssetTools() {
	// ── list_assets ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_assets",
		mcp.WithDescription("List the data assets (directories of JSON Lines files) with file count, size and last change"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListAssets)

	// ── get_asset_view ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_asset_view",
		mcp.WithDescription("Build the dashboard of an asset: one panel per header, either a chart (series over period) or a table preview. Headers whose tables cannot be joined are listed under errors."),
		mcp.WithString("asset",
			mcp.Description("Asset name as returned by list_assets"),
			mcp.Required(),
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleGetAssetView)

	// ── list_record_sets ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_record_sets",
		mcp.WithDescription("List the record sets (one table per path shape) of an asset with row counts and columns"),
		mcp.WithString("asset",
			mcp.Description("Asset name"),
			mcp.Required(),
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListRecordSets)

	// ── get_record_set ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_record_set",
		mcp.WithDescription("Read one record set of an asset, in narrow (key/value rows) or wide (one column per key) layout"),
		mcp.WithString("asset",
			mcp.Description("Asset name"),
			mcp.Required(),
		),
		mcp.WithString("recordPath",
			mcp.Description("Record path, e.g. metric.period.str.int"),
			mcp.Required(),
		),
		mcp.WithBoolean("wide",
			mcp.Description("Pivot to one column per distinct key (default false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default 100, 0 for all)"),
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleGetRecordSet)
}

func (s *Server) handleListAssets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.assets.ListAssets())
}

func (s *Server) handleGetAssetView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	asset, err := requireString(req, "asset")
	if err != nil {
		return nil, err
	}
	view, err := s.assets.View(asset)
	if err != nil {
		return nil, fmt.Errorf("get asset view: %w", err)
	}
	return jsonResult(view)
}

func (s *Server) handleListRecordSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	asset, err := requireString(req, "asset")
	if err != nil {
		return nil, err
	}
	sets, err := s.assets.RecordSets(asset)
	if err != nil {
		return nil, fmt.Errorf("list record sets: %w", err)
	}
	return jsonResult(sets)
}

func (s *Server) handleGetRecordSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	asset, err := requireString(req, "asset")
	if err != nil {
		return nil, err
	}
	path, err := requireString(req, "recordPath")
	if err != nil {
		return nil, err
	}
	table, err := s.assets.RecordSet(asset, path, req.GetBool("wide", false), req.GetInt("limit", 100))
	if err != nil {
		return nil, fmt.Errorf("get record set: %w", err)
	}
	return jsonResult(table)
}
