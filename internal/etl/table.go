package etl

import (
	"github.com/samber/lo"
)

// ── Table ──────────────────────────────────────────────────
// Row-oriented table. A cell a row does not carry is absent, which is
// different from a cell holding null.

// Column is a named table column. Label keeps the structured name a pivot
// produced it from; plain columns have a one-level label.
type Column struct {
	Name  string `json:"name"`
	Label Label  `json:"-"`
}

func PlainColumn(name string) Column {
	return Column{Name: name, Label: NewLabel(Str(name))}
}

// Row maps column names to present cells.
type Row map[string]Scalar

func (r Row) Get(name string) (Scalar, bool) {
	v, ok := r[name]
	return v, ok
}

// Table holds rows under an ordered column list.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates an empty table with plain columns.
func NewTable(names ...string) *Table {
	t := &Table{}
	for _, n := range names {
		t.AddColumn(PlainColumn(n))
	}
	return t
}

// AddColumn appends c unless a column of that name exists.
func (t *Table) AddColumn(c Column) {
	if t.HasColumn(c.Name) {
		return
	}
	t.Columns = append(t.Columns, c)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

func (t *Table) Column(name string) (Column, bool) {
	return lo.Find(t.Columns, func(c Column) bool { return c.Name == name })
}

func (t *Table) ColumnNames() []string {
	return lo.Map(t.Columns, func(c Column, _ int) string { return c.Name })
}

func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row, registering any new column names it carries in the
// order given by names.
func (t *Table) Append(row Row, names ...string) {
	for _, n := range names {
		if _, ok := row[n]; ok {
			t.AddColumn(PlainColumn(n))
		}
	}
	t.Rows = append(t.Rows, row)
}

// Matrix renders up to limit rows (all when limit <= 0) as JSON-safe values
// in column order. Absent cells become nil.
func (t *Table) Matrix(limit int) [][]any {
	n := len(t.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([][]any, n)
	for i := 0; i < n; i++ {
		line := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			if v, ok := t.Rows[i][c.Name]; ok {
				line[j] = v.JSONValue()
			}
		}
		out[i] = line
	}
	return out
}

// BuildTable assembles grouped records into a table. Columns are the union
// of record fields in first-seen order.
func BuildTable(records []Record) *Table {
	t := &Table{Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		row := make(Row, len(rec.Cells))
		for _, c := range rec.Cells {
			row[c.Name] = c.Value
			t.AddColumn(PlainColumn(c.Name))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ── Dtype ──────────────────────────────────────────────────

// Dtype is the inferred type of a column.
type Dtype string

const (
	DtypeInt    Dtype = "int64"
	DtypeFloat  Dtype = "float64"
	DtypeBool   Dtype = "bool"
	DtypeString Dtype = "string"
	DtypeObject Dtype = "object" // mixed, empty or all-null
)

func (d Dtype) IsNumeric() bool { return d == DtypeInt || d == DtypeFloat }

// Dtype infers the type of the named column. Ints with gaps (absent or
// null cells) widen to float; a numeric column stays numeric through gaps.
func (t *Table) Dtype(name string) Dtype {
	var ints, floats, bools, strs, others, gaps int
	for _, r := range t.Rows {
		v, ok := r[name]
		if !ok || v.IsNull() {
			gaps++
			continue
		}
		switch v.Kind() {
		case KindInt:
			ints++
		case KindFloat:
			floats++
		case KindBool:
			bools++
		case KindString:
			strs++
		default:
			others++
		}
	}

	present := ints + floats + bools + strs + others
	switch {
	case present == 0:
		return DtypeObject
	case ints == present && gaps == 0:
		return DtypeInt
	case ints+floats == present:
		return DtypeFloat
	case bools == present && gaps == 0:
		return DtypeBool
	case strs == present:
		return DtypeString
	default:
		return DtypeObject
	}
}

// Schema maps column dtypes onto export field types.
func (t *Table) Schema() *Schema {
	s := &Schema{Fields: make([]Field, 0, len(t.Columns))}
	for _, c := range t.Columns {
		typ := "text"
		switch t.Dtype(c.Name) {
		case DtypeInt, DtypeFloat:
			typ = "number"
		case DtypeBool:
			typ = "boolean"
		}
		s.Fields = append(s.Fields, Field{Name: c.Name, Type: typ})
	}
	return s
}

// ── Record Set ─────────────────────────────────────────────

// RecordSet is one table produced from one group.
type RecordSet struct {
	RecordPath string   `json:"recordPath"`
	Key        GroupKey `json:"-"`
	Data       *Table   `json:"-"`
}

// Header is the record path without its trailing type names.
func (rs RecordSet) Header() string { return rs.Key.Header() }

// BuildRecordSets turns every group into a RecordSet, in group order.
func BuildRecordSets(groups *Groups) []RecordSet {
	sets := make([]RecordSet, 0, groups.Len())
	for g := range groups.All() {
		sets = append(sets, RecordSet{
			RecordPath: g.Key.String(),
			Key:        g.Key,
			Data:       BuildTable(g.Records),
		})
	}
	return sets
}
