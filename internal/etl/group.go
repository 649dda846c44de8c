package etl

import (
	"iter"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Grouper ────────────────────────────────────────────────
// Buckets stems by the shape of their path. Stems whose member names match
// (array indices ignored) and whose key/value types match land in the same
// group and become rows of one table.

// GroupKey is the shape signature of a stem.
type GroupKey struct {
	Path      []string // member names of the prefix, indices dropped
	KeyType   string   // empty for a bare scalar document
	ValueType string
}

// String joins the path and the two type names with dots,
// e.g. "metric.period.str.int".
func (k GroupKey) String() string {
	parts := make([]string, 0, len(k.Path)+2)
	parts = append(parts, k.Path...)
	if k.KeyType != "" {
		parts = append(parts, k.KeyType)
	}
	parts = append(parts, k.ValueType)
	return strings.Join(parts, ".")
}

// Header is the key without its type names. Record sets sharing a header
// are shown together.
func (k GroupKey) Header() string {
	return strings.Join(k.Path, ".")
}

// KeyOf derives the group key of a stem.
func KeyOf(s Stem) GroupKey {
	var path []string
	for _, seg := range s.Prefix() {
		if !seg.IsIndex() {
			path = append(path, seg.Name())
		}
	}
	k := GroupKey{Path: path, ValueType: s.Value.TypeName()}
	if key, ok := s.Key(); ok {
		k.KeyType = key.TypeName()
	}
	return k
}

// ToRecord maps a stem to its flat record.
//
// Member names of the prefix accumulate into a dotted name until an array
// index is reached; the index is then stored under that name. An index in
// the very first position is the document id instead. A run of names that
// is never closed by an index is dropped, and an index with no pending
// name adds nothing.
func ToRecord(s Stem) Record {
	var rec Record
	if key, ok := s.Key(); ok {
		rec.Set(KeyColumn, key.Scalar())
	}
	rec.Set(ValueColumn, s.Value)

	var pending []string
	for i, seg := range s.Prefix() {
		switch {
		case !seg.IsIndex():
			pending = append(pending, seg.Name())
		case i == 0:
			rec.Set(DocIDColumn, seg.Scalar())
		default:
			if len(pending) > 0 {
				rec.Set(strings.Join(pending, "."), seg.Scalar())
			}
			pending = pending[:0]
		}
	}
	return rec
}

// Group is the set of records sharing one GroupKey.
type Group struct {
	Key     GroupKey
	Records []Record
}

// Groups maps group key strings to groups in first-seen order.
type Groups struct {
	m *orderedmap.OrderedMap[string, *Group]
}

func NewGroups() *Groups {
	return &Groups{m: orderedmap.New[string, *Group]()}
}

// Add files one stem under its group.
func (g *Groups) Add(s Stem) {
	key := KeyOf(s)
	name := key.String()
	grp, ok := g.m.Get(name)
	if !ok {
		grp = &Group{Key: key}
		g.m.Set(name, grp)
	}
	grp.Records = append(grp.Records, ToRecord(s))
}

func (g *Groups) Len() int { return g.m.Len() }

func (g *Groups) Get(key string) (*Group, bool) { return g.m.Get(key) }

// Keys returns group key strings in first-seen order.
func (g *Groups) Keys() []string {
	keys := make([]string, 0, g.m.Len())
	for p := g.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All yields groups in first-seen order.
func (g *Groups) All() iter.Seq[*Group] {
	return func(yield func(*Group) bool) {
		for p := g.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Value) {
				return
			}
		}
	}
}

// GroupStems drains stems into Groups. This is the one point of the
// pipeline that needs every stem before it can return.
func GroupStems(stems iter.Seq2[Stem, error]) (*Groups, error) {
	groups := NewGroups()
	for s, err := range stems {
		if err != nil {
			return nil, err
		}
		groups.Add(s)
	}
	return groups, nil
}
