package service

import (
	"math"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"assetdash/internal/etl"
)

// Chart types understood by the frontend.
const (
	ChartBar     = "bar"
	BarModeGroup = "group"
)

// ChartSpec describes a grouped bar chart: X and Y name the axis columns,
// Color the column that splits series, Hover the columns shown on hover.
type ChartSpec struct {
	Type    string   `json:"type"`
	BarMode string   `json:"barMode"`
	X       string   `json:"x"`
	Y       string   `json:"y"`
	Color   string   `json:"color,omitempty"`
	Hover   []string `json:"hover"`
	Series  []Series `json:"series"`
}

// Series is the points sharing one color value.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type Point struct {
	X     any            `json:"x"`
	Y     float64        `json:"y"`
	Hover map[string]any `json:"hover,omitempty"`
}

// BuildChart lays out a chart-eligible table as series over periods. Rows
// without a finite numeric value are left out.
func BuildChart(t *etl.Table) *ChartSpec {
	spec := &ChartSpec{Type: ChartBar, BarMode: BarModeGroup, X: etl.PeriodColumn, Y: etl.ValueColumn}
	if t.HasColumn(etl.KeyColumn) {
		spec.Color = etl.KeyColumn
	}
	spec.Hover = lo.Filter(t.ColumnNames(), func(name string, _ int) bool {
		return name != spec.X && name != spec.Y && name != spec.Color
	})

	series := orderedmap.New[string, *Series]()
	for _, row := range t.Rows {
		v, ok := row.Get(etl.ValueColumn)
		if !ok || v.IsNull() {
			continue
		}
		y, err := cast.ToFloat64E(v.Any())
		if err != nil || math.IsInf(y, 0) || math.IsNaN(y) {
			continue
		}

		name := etl.ValueColumn
		if spec.Color != "" {
			if k, ok := row.Get(spec.Color); ok {
				name = k.String()
			}
		}
		s, ok := series.Get(name)
		if !ok {
			s = &Series{Name: name}
			series.Set(name, s)
		}

		var x any
		if p, ok := row.Get(etl.PeriodColumn); ok {
			x = p.JSONValue()
		}
		pt := Point{X: x, Y: y}
		for _, h := range spec.Hover {
			if hv, ok := row.Get(h); ok {
				if pt.Hover == nil {
					pt.Hover = make(map[string]any, len(spec.Hover))
				}
				pt.Hover[h] = hv.JSONValue()
			}
		}
		s.Points = append(s.Points, pt)
	}

	spec.Series = make([]Series, 0, series.Len())
	for p := series.Oldest(); p != nil; p = p.Next() {
		spec.Series = append(spec.Series, *p.Value)
	}
	return spec
}
