package etl

import (
	"iter"
	"log/slog"
	"time"

	"assetdash/internal/domain"
)

// ── Engine ─────────────────────────────────────────────────
// Runs the pipeline for one asset: read → flatten → group → build tables.
// Everything up to the grouper is lazy; grouping drains the stems.

// Stats summarises one pipeline run.
type Stats struct {
	Files     int           `json:"files"`
	Documents int           `json:"documents"`
	Stems     int           `json:"stems"`
	Groups    int           `json:"groups"`
	Duration  time.Duration `json:"duration"`
}

// Result is the outcome of running the pipeline over one asset.
type Result struct {
	RecordSets []RecordSet
	Stats      Stats
}

// Engine turns asset files into record sets and panels.
type Engine struct {
	Logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Logger: logger}
}

// Run reads files and builds one record set per group.
func (e *Engine) Run(files []domain.FileRef) (*Result, error) {
	start := time.Now()
	stats := Stats{Files: len(files)}

	docs := countSeq2(ReadDocuments(files), &stats.Documents)
	stems := countSeq2(FlattenAll(docs), &stats.Stems)
	groups, err := GroupStems(stems)
	if err != nil {
		return nil, err
	}

	sets := BuildRecordSets(groups)
	stats.Groups = len(sets)
	stats.Duration = time.Since(start)
	e.Logger.Debug("etl: pipeline run",
		"files", stats.Files,
		"documents", stats.Documents,
		"stems", stats.Stems,
		"groups", stats.Groups,
		"duration", stats.Duration)
	return &Result{RecordSets: sets, Stats: stats}, nil
}

// Panels builds the displayable panels of sets, in header order. Headers
// whose record sets cannot be combined are logged and returned as errors;
// headers with too many record sets are logged at debug level and left out.
func (e *Engine) Panels(sets []RecordSet) ([]Panel, []error) {
	var (
		panels []Panel
		errs   []error
	)
	for _, g := range GroupByHeader(sets) {
		p, ok, err := BuildPanel(g)
		switch {
		case err != nil:
			e.Logger.Warn("etl: panel skipped", "header", g.Header, "err", err)
			errs = append(errs, err)
		case ok:
			panels = append(panels, p)
		case g.Header != PeriodColumn:
			e.Logger.Debug("etl: panel omitted", "header", g.Header, "tables", len(g.Sets))
		}
	}
	return panels, errs
}

// countSeq2 counts the successful elements seq yields.
func countSeq2[T any](seq iter.Seq2[T, error], n *int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err == nil {
				*n++
			}
			if !yield(v, err) {
				return
			}
		}
	}
}
