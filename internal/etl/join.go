package etl

import (
	"maps"

	"github.com/samber/lo"
)

// OuterJoin joins left and right on every column they share. Left rows come
// first, each followed by its matches; right rows nothing matched are
// appended at the end. Tables with no common column fail with
// *NoJoinKeyError rather than producing a cross product.
func OuterJoin(left, right *Table) (*Table, error) {
	on := lo.Filter(left.ColumnNames(), func(n string, _ int) bool { return right.HasColumn(n) })
	if len(on) == 0 {
		return nil, &NoJoinKeyError{Left: left.ColumnNames(), Right: right.ColumnNames()}
	}

	index := make(map[string][]int, len(right.Rows))
	for i, r := range right.Rows {
		id := rowIdentity(r, on)
		index[id] = append(index[id], i)
	}

	out := &Table{}
	for _, c := range left.Columns {
		out.AddColumn(c)
	}
	for _, c := range right.Columns {
		out.AddColumn(c)
	}

	matched := make([]bool, len(right.Rows))
	for _, l := range left.Rows {
		hits := index[rowIdentity(l, on)]
		if len(hits) == 0 {
			out.Rows = append(out.Rows, maps.Clone(l))
			continue
		}
		for _, i := range hits {
			matched[i] = true
			row := maps.Clone(right.Rows[i])
			for k, v := range l {
				row[k] = v
			}
			out.Rows = append(out.Rows, row)
		}
	}
	for i, r := range right.Rows {
		if !matched[i] {
			out.Rows = append(out.Rows, maps.Clone(r))
		}
	}
	return out, nil
}
