package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	assetsURI      = "assetdash://assets"
	assetURIPrefix = "assetdash://asset/"
	viewURISuffix  = "/view"
)

func (s *Server) registerResources() {
	// ── assetdash://assets ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		assetsURI,
		"All Assets",
		mcp.WithMIMEType("application/json"),
	), s.handleAssetsResource)

	// ── assetdash://asset/{name}/view ──────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			assetURIPrefix+"{name}"+viewURISuffix,
			"Dashboard of an Asset",
		),
		s.handleAssetViewResource,
	)
}

func (s *Server) handleAssetsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(assetsURI, s.assets.ListAssets())
}

func (s *Server) handleAssetViewResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	name, ok := assetFromURI(uri)
	if !ok {
		return nil, fmt.Errorf("could not extract asset from URI: %s", uri)
	}
	view, err := s.assets.View(name)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, view)
}

// assetFromURI extracts name from "assetdash://asset/{name}/view".
func assetFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, assetURIPrefix)
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, viewURISuffix)
	return name, ok && name != ""
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
