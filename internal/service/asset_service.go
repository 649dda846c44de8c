package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assetdash/internal/catalog"
	"assetdash/internal/domain"
	"assetdash/internal/etl"
)

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrRecordSetNotFound = errors.New("record set not found")
)

// ─────────────────────────────────────────────────────────────
// Asset Service: read side of the dashboard
// ─────────────────────────────────────────────────────────────

// AssetService runs the pipeline over catalog assets and shapes the results
// for the desktop app and MCP tools.
type AssetService struct {
	catalog     *catalog.Catalog
	engine      *etl.Engine
	previewRows int
	logger      *slog.Logger
}

// NewAssetService creates an AssetService. previewRows caps table panels.
func NewAssetService(cat *catalog.Catalog, engine *etl.Engine, previewRows int, logger *slog.Logger) *AssetService {
	return &AssetService{catalog: cat, engine: engine, previewRows: previewRows, logger: logger}
}

// AssetSummary is one entry of the asset list.
type AssetSummary struct {
	Name     string    `json:"name"`
	Files    int       `json:"files"`
	Bytes    int64     `json:"bytes"`
	Size     string    `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Modified string    `json:"modified"`
}

// RecordSetInfo describes a record set without its rows.
type RecordSetInfo struct {
	RecordPath string   `json:"recordPath"`
	Header     string   `json:"header"`
	Rows       int      `json:"rows"`
	Columns    []string `json:"columns"`
}

// TableView is a table flattened for display. Rows may be capped; Total is
// the full row count.
type TableView struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Total   int      `json:"total"`
}

// PanelView is one displayed header: a chart or a table.
type PanelView struct {
	Header  string     `json:"header"`
	Kind    string     `json:"kind"`
	Sources []string   `json:"sources"`
	Chart   *ChartSpec `json:"chart,omitempty"`
	Table   *TableView `json:"table,omitempty"`
}

// AssetView is everything the dashboard shows for one asset.
type AssetView struct {
	Asset  string      `json:"asset"`
	Title  string      `json:"title"`
	Tables int         `json:"tables"`
	Panels []PanelView `json:"panels"`
	Errors []string    `json:"errors,omitempty"`
	Stats  etl.Stats   `json:"stats"`
}

// ListAssets summarises every asset in the catalog, sorted by name.
func (s *AssetService) ListAssets() []AssetSummary {
	assets := s.catalog.Assets()
	out := make([]AssetSummary, 0, len(assets))
	for _, a := range assets {
		mod := a.ModTime()
		out = append(out, AssetSummary{
			Name:     a.Name,
			Files:    len(a.Files),
			Bytes:    a.Size(),
			Size:     humanize.Bytes(uint64(a.Size())),
			ModTime:  mod,
			Modified: humanize.Time(mod),
		})
	}
	return out
}

// Asset looks an asset up by name.
func (s *AssetService) Asset(name string) (domain.Asset, error) {
	a, ok := s.catalog.Get(name)
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
	}
	return a, nil
}

// Load runs the pipeline over the named asset.
func (s *AssetService) Load(name string) (*etl.Result, error) {
	a, err := s.Asset(name)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Run(a.Files)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return res, nil
}

// RecordSets lists the record sets of an asset in group order.
func (s *AssetService) RecordSets(name string) ([]RecordSetInfo, error) {
	res, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	out := make([]RecordSetInfo, 0, len(res.RecordSets))
	for _, rs := range res.RecordSets {
		out = append(out, RecordSetInfo{
			RecordPath: rs.RecordPath,
			Header:     rs.Header(),
			Rows:       rs.Data.Len(),
			Columns:    rs.Data.ColumnNames(),
		})
	}
	return out, nil
}

// RecordSet returns one record set of an asset, pivoted wide when asked.
// limit caps the rows returned; zero returns all of them.
func (s *AssetService) RecordSet(name, recordPath string, wide bool, limit int) (*TableView, error) {
	res, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	for _, rs := range res.RecordSets {
		if rs.RecordPath != recordPath {
			continue
		}
		t := rs.Data
		if wide {
			if t, err = etl.NarrowToWide(t); err != nil {
				return nil, fmt.Errorf("pivot %s: %w", recordPath, err)
			}
		}
		return tableView(t, limit), nil
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrRecordSetNotFound, recordPath, name)
}

// View builds the dashboard for an asset. Headers whose data cannot be
// combined are reported in Errors and left out; the rest still render.
func (s *AssetService) View(name string) (*AssetView, error) {
	res, err := s.Load(name)
	if err != nil {
		return nil, err
	}

	view := &AssetView{
		Asset:  name,
		Title:  AssetTitle(name),
		Tables: len(res.RecordSets),
		Panels: []PanelView{},
		Stats:  res.Stats,
	}

	panels, errs := s.engine.Panels(res.RecordSets)
	for _, err := range errs {
		view.Errors = append(view.Errors, err.Error())
	}
	for _, p := range panels {
		pv := PanelView{Header: p.Header, Kind: string(p.Kind), Sources: p.Sources}
		if p.Kind == etl.PanelChart {
			pv.Chart = BuildChart(p.Data)
		} else {
			pv.Table = tableView(p.Data, s.previewRows)
		}
		view.Panels = append(view.Panels, pv)
	}
	return view, nil
}

// AssetTitle turns an asset name into a display title: dashes become
// spaces and words are title-cased.
func AssetTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}

func tableView(t *etl.Table, limit int) *TableView {
	return &TableView{
		Columns: t.ColumnNames(),
		Rows:    t.Matrix(limit),
		Total:   t.Len(),
	}
}
