package etl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Pivot ──────────────────────────────────────────────────
// Narrow tables carry one row per key/value pair; wide tables carry one
// column per distinct key. Every other column identifies a row and is kept
// as is in both layouts.

// IdentifyingColumns returns the columns of t other than key and value.
func IdentifyingColumns(t *Table) []string {
	return lo.Filter(t.ColumnNames(), func(n string, _ int) bool {
		return n != KeyColumn && n != ValueColumn
	})
}

// rowIdentity encodes the identifying cells of r as a map key. Absent cells
// are encoded apart from null ones.
func rowIdentity(r Row, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		v, ok := r[c]
		if !ok {
			b.WriteString("-;")
			continue
		}
		id := v.identity()
		b.WriteString(strconv.Itoa(len(id)))
		b.WriteByte(':')
		b.WriteString(id)
		b.WriteByte(';')
	}
	return b.String()
}

func identityCells(r Row, cols []string) []Cell {
	cells := make([]Cell, 0, len(cols))
	for _, c := range cols {
		if v, ok := r[c]; ok {
			cells = append(cells, Cell{Name: c, Value: v})
		}
	}
	return cells
}

// NarrowToWide pivots t into one row per distinct combination of
// identifying values and one column per distinct key. Rows and columns keep
// first-seen order. Two rows with the same identity and key fail with
// *AmbiguousPivotError.
func NarrowToWide(t *Table) (*Table, error) {
	if !t.HasColumn(KeyColumn) || !t.HasColumn(ValueColumn) {
		return nil, ErrNotNarrow
	}
	ids := IdentifyingColumns(t)

	rows := orderedmap.New[string, Row]()
	filled := make(map[string]map[string]bool)
	keys := orderedmap.New[string, Scalar]()
	names := lo.SliceToMap(ids, func(n string) (string, string) { return n, "" })
	for _, r := range t.Rows {
		key := r[KeyColumn]
		keyID := key.identity()
		col := wideLabel(key).Render()
		if _, seen := keys.Get(keyID); !seen {
			if _, taken := names[col]; taken {
				return nil, fmt.Errorf("pivot key %q: %w", col, ErrColumnCollision)
			}
			names[col] = keyID
			keys.Set(keyID, key)
		}

		id := rowIdentity(r, ids)
		wide, ok := rows.Get(id)
		if !ok {
			wide = make(Row, len(ids))
			for _, c := range identityCells(r, ids) {
				wide[c.Name] = c.Value
			}
			rows.Set(id, wide)
			filled[id] = make(map[string]bool)
		}
		if filled[id][keyID] {
			return nil, &AmbiguousPivotError{Identity: identityCells(r, ids), Key: key}
		}
		filled[id][keyID] = true
		if v, ok := r[ValueColumn]; ok {
			wide[col] = v
		} else {
			wide[col] = Null()
		}
	}

	out := &Table{Rows: make([]Row, 0, rows.Len())}
	for _, id := range ids {
		c, _ := t.Column(id)
		out.AddColumn(c)
	}
	for p := keys.Oldest(); p != nil; p = p.Next() {
		label := wideLabel(p.Value)
		out.AddColumn(Column{Name: label.Render(), Label: label})
	}
	for p := rows.Oldest(); p != nil; p = p.Next() {
		out.Rows = append(out.Rows, p.Value)
	}
	return out, nil
}

func wideLabel(key Scalar) Label {
	return NewLabel(Str(ValueColumn), key)
}

// pivoted reports whether c was produced by NarrowToWide.
func pivoted(c Column) bool {
	lv := c.Label.Levels()
	if len(lv) != 2 {
		return false
	}
	head, ok := lv[0].Text()
	return ok && head == ValueColumn
}

// WideToNarrow reverses NarrowToWide. Each present cell of a pivoted column
// becomes one row carrying the row's identifying cells plus key and value.
func WideToNarrow(t *Table) (*Table, error) {
	wideCols := lo.Filter(t.Columns, func(c Column, _ int) bool { return pivoted(c) })
	if len(wideCols) == 0 {
		return nil, ErrNotWide
	}
	ids := lo.FilterMap(t.Columns, func(c Column, _ int) (string, bool) {
		return c.Name, !pivoted(c)
	})

	out := NewTable(append([]string{KeyColumn, ValueColumn}, ids...)...)
	for _, r := range t.Rows {
		for _, c := range wideCols {
			v, ok := r[c.Name]
			if !ok {
				continue
			}
			narrow := make(Row, len(ids)+2)
			narrow[KeyColumn] = c.Label.Levels()[1]
			narrow[ValueColumn] = v
			for _, cell := range identityCells(r, ids) {
				narrow[cell.Name] = cell.Value
			}
			out.Rows = append(out.Rows, narrow)
		}
	}
	return out, nil
}
