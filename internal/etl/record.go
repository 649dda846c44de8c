package etl

// ── Record ─────────────────────────────────────────────────
// The flat form of one stem. Grouped records become the rows of a Table.

// Reserved record fields.
const (
	KeyColumn    = "key"
	ValueColumn  = "value"
	DocIDColumn  = "docId"
	PeriodColumn = "period"
)

// Cell is one named value of a Record.
type Cell struct {
	Name  string `json:"name"`
	Value Scalar `json:"value"`
}

// Record is a single flat row. Cells keep insertion order; setting an
// existing name replaces its value in place.
type Record struct {
	Cells []Cell `json:"cells"`
}

func (r *Record) Set(name string, v Scalar) {
	for i := range r.Cells {
		if r.Cells[i].Name == name {
			r.Cells[i].Value = v
			return
		}
	}
	r.Cells = append(r.Cells, Cell{Name: name, Value: v})
}

func (r Record) Get(name string) (Scalar, bool) {
	for _, c := range r.Cells {
		if c.Name == name {
			return c.Value, true
		}
	}
	return Scalar{}, false
}

// Names returns the cell names in insertion order.
func (r Record) Names() []string {
	names := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		names[i] = c.Name
	}
	return names
}

// ── Schema ─────────────────────────────────────────────────

// Field describes a single column of a Table.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // "text" | "number" | "boolean"
}

// Schema describes the shape of a Table, used by export destinations.
type Schema struct {
	Fields []Field `json:"fields"`
}

// FieldNames returns an ordered list of field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
