package etl

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Panels ─────────────────────────────────────────────────
// Record sets sharing a header are shown together as one panel: a chart
// when the data is a numeric series over periods, a table otherwise.

type PanelKind string

const (
	PanelChart PanelKind = "chart"
	PanelTable PanelKind = "table"
)

// Panel is the displayable result for one header.
type Panel struct {
	Header  string
	Kind    PanelKind
	Sources []string // record paths the panel was built from
	Data    *Table
}

// HeaderGroup is the record sets under one header, in first-seen order.
type HeaderGroup struct {
	Header string
	Sets   []RecordSet
}

// GroupByHeader buckets record sets by header, keeping first-seen order.
func GroupByHeader(sets []RecordSet) []HeaderGroup {
	m := orderedmap.New[string, []RecordSet]()
	for _, rs := range sets {
		h := rs.Header()
		cur, _ := m.Get(h)
		m.Set(h, append(cur, rs))
	}
	out := make([]HeaderGroup, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, HeaderGroup{Header: p.Key, Sets: p.Value})
	}
	return out
}

// ChartEligible reports whether t has a numeric value column and a period
// column.
func ChartEligible(t *Table) bool {
	return t.HasColumn(ValueColumn) && t.Dtype(ValueColumn).IsNumeric() && t.HasColumn(PeriodColumn)
}

// DetailTable prepares t for tabular display, pivoting it wide when it is
// still narrow.
func DetailTable(t *Table) (*Table, error) {
	if !t.HasColumn(KeyColumn) || !t.HasColumn(ValueColumn) {
		return t, nil
	}
	return NarrowToWide(t)
}

// BuildPanel combines the record sets of one header. It reports false for
// headers that are not displayed: the period dimension, and groups of three
// or more sets.
func BuildPanel(g HeaderGroup) (Panel, bool, error) {
	if g.Header == PeriodColumn {
		return Panel{}, false, nil
	}
	p := Panel{
		Header:  g.Header,
		Sources: lo.Map(g.Sets, func(rs RecordSet, _ int) string { return rs.RecordPath }),
	}

	var data *Table
	switch len(g.Sets) {
	case 1:
		data = g.Sets[0].Data
	case 2:
		joined, err := joinPair(g.Sets[0].Data, g.Sets[1].Data)
		if err != nil {
			return Panel{}, false, fmt.Errorf("join %s: %w", g.Header, err)
		}
		data = joined
	default:
		return Panel{}, false, nil
	}

	if ChartEligible(data) {
		p.Kind, p.Data = PanelChart, data
		return p, true, nil
	}
	detail, err := DetailTable(data)
	if err != nil {
		return Panel{}, false, fmt.Errorf("pivot %s: %w", g.Header, err)
	}
	p.Kind, p.Data = PanelTable, detail
	return p, true, nil
}

// joinPair pivots the non-numeric table wide and outer-joins it onto the
// numeric one. The first table is taken as numeric when its value column
// is, the second otherwise.
func joinPair(a, b *Table) (*Table, error) {
	num, str := b, a
	if a.HasColumn(ValueColumn) && a.Dtype(ValueColumn).IsNumeric() {
		num, str = a, b
	}
	wide, err := NarrowToWide(str)
	if err != nil {
		return nil, err
	}
	return OuterJoin(wide, num)
}

// IsDataError reports whether err comes from the shape of the data rather
// than from I/O.
func IsDataError(err error) bool {
	var (
		amb  *AmbiguousPivotError
		nojk *NoJoinKeyError
	)
	return errors.As(err, &amb) || errors.As(err, &nojk) ||
		errors.Is(err, ErrNotNarrow) || errors.Is(err, ErrColumnCollision)
}
