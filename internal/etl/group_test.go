package etl

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stemsOf(t *testing.T, docs ...string) iter.Seq2[Stem, error] {
	t.Helper()
	nodes := make([]Node, len(docs))
	for i, d := range docs {
		nodes[i] = mustParse(t, d)
	}
	return FlattenAll(func(yield func(Node, error) bool) {
		for _, n := range nodes {
			if !yield(n, nil) {
				return
			}
		}
	})
}

func firstStem(t *testing.T, doc string) Stem {
	t.Helper()
	for s := range Flatten(mustParse(t, doc)) {
		return s
	}
	t.Fatalf("no stems in %s", doc)
	return Stem{}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		doc    string
		key    string
		header string
	}{
		{`{"metric":{"sales":{"period":"2024-Q1"}}}`, "metric.sales.str.str", "metric.sales"},
		{`{"metric":{"sales":{"value":100}}}`, "metric.sales.str.int", "metric.sales"},
		{`{"metric":{"sales":{"value":1.5}}}`, "metric.sales.str.float", "metric.sales"},
		{`{"a":[{"b":true}]}`, "a.str.bool", "a"},
		{`{"a":[null]}`, "a.int.NoneType", "a"},
		{`[{"x":1}]`, "str.int", ""},
		{`{"x":1}`, "str.int", ""},
		{`"bare"`, "str", ""},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			k := KeyOf(firstStem(t, tt.doc))
			assert.Equal(t, tt.key, k.String())
			assert.Equal(t, tt.header, k.Header())
		})
	}
}

func TestGroupKeysIgnoreArrayShape(t *testing.T) {
	keysOf := func(doc string) []string {
		groups, err := GroupStems(stemsOf(t, doc))
		require.NoError(t, err)
		return groups.Keys()
	}

	short := keysOf(`{"a":[{"b":1,"c":"x"}],"d":{"e":2}}`)
	long := keysOf(`{"a":[{"b":5,"c":"y"},{"b":6,"c":"z"},{"b":7,"c":"w"}],"d":{"e":9}}`)
	assert.Equal(t, short, long)
	assert.Equal(t, []string{"a.str.int", "a.str.str", "d.str.int"}, short)
}

func TestToRecord(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Cell
	}{
		{
			name: "index closes a run of names",
			doc:  `{"metric":[{"period":[{"sales":100}]}]}`,
			want: []Cell{
				{KeyColumn, Str("sales")},
				{ValueColumn, Int(100)},
				{"metric", Int(0)},
				{"period", Int(0)},
			},
		},
		{
			name: "names join with dots",
			doc:  `{"a":{"b":[{"c":"x"}]}}`,
			want: []Cell{
				{KeyColumn, Str("c")},
				{ValueColumn, Str("x")},
				{"a.b", Int(0)},
			},
		},
		{
			name: "leading index is the document id",
			doc:  `[{"x":1}]`,
			want: []Cell{
				{KeyColumn, Str("x")},
				{ValueColumn, Int(1)},
				{DocIDColumn, Int(0)},
			},
		},
		{
			name: "trailing run of names is dropped",
			doc:  `{"a":{"b":{"c":1}}}`,
			want: []Cell{
				{KeyColumn, Str("c")},
				{ValueColumn, Int(1)},
			},
		},
		{
			name: "index without pending names adds nothing",
			doc:  `[[{"x":1}]]`,
			want: []Cell{
				{KeyColumn, Str("x")},
				{ValueColumn, Int(1)},
				{DocIDColumn, Int(0)},
			},
		},
		{
			name: "integer terminal key",
			doc:  `{"a":[[7]]}`,
			want: []Cell{
				{KeyColumn, Int(0)},
				{ValueColumn, Int(7)},
				{"a", Int(0)},
			},
		},
		{
			name: "bare scalar",
			doc:  `3.5`,
			want: []Cell{
				{ValueColumn, Float(3.5)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ToRecord(firstStem(t, tt.doc))
			require.Len(t, rec.Cells, len(tt.want))
			for i, c := range tt.want {
				assert.Equal(t, c.Name, rec.Cells[i].Name)
				assert.True(t, c.Value.Equal(rec.Cells[i].Value), "cell %s: got %v want %v", c.Name, rec.Cells[i].Value, c.Value)
			}
		})
	}
}

func TestToRecordNeverAddsEmptyName(t *testing.T) {
	for s := range Flatten(mustParse(t, `[[[1]],{"a":{"b":[{"c":{"d":2}}]}}]`)) {
		rec := ToRecord(s)
		assert.NotContains(t, rec.Names(), "")
	}
}

func TestGroupStemsKeepsFirstSeenOrder(t *testing.T) {
	groups, err := GroupStems(stemsOf(t,
		`{"z":{"v":1},"a":{"v":"x"}}`,
		`{"a":{"v":"y"},"m":{"v":2},"z":{"v":3}}`,
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"z.str.int", "a.str.str", "m.str.int"}, groups.Keys())

	z, ok := groups.Get("z.str.int")
	require.True(t, ok)
	assert.Len(t, z.Records, 2)
}

func TestGroupStemsStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	stems := func(yield func(Stem, error) bool) {
		if !yield(firstStem(t, `{"a":1}`), nil) {
			return
		}
		yield(Stem{}, boom)
	}
	groups, err := GroupStems(stems)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, groups)
}
