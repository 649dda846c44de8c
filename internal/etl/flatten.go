package etl

import (
	"iter"
	"slices"
	"strconv"
)

// ── Flattener ──────────────────────────────────────────────
// Walks one document down to its leaves. Every leaf becomes a Stem:
// the structural path to it plus the leaf value.

// Segment is one step of a structural path: an object member name or an
// array index.
type Segment struct {
	name    string
	index   int
	isIndex bool
}

func KeySegment(name string) Segment { return Segment{name: name} }
func IndexSegment(i int) Segment { return Segment{index: i, isIndex: true} }

func (s Segment) IsIndex() bool { return s.isIndex }
func (s Segment) Name() string { return s.name }
func (s Segment) Index() int { return s.index }

// TypeName is "int" for indices and "str" for member names.
func (s Segment) TypeName() string {
	if s.isIndex {
		return "int"
	}
	return "str"
}

// Scalar converts the segment into a cell value.
func (s Segment) Scalar() Scalar {
	if s.isIndex {
		return Int(int64(s.index))
	}
	return Str(s.name)
}

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.name
}

// Stem is one flattened leaf. The last element of Path is the terminal key;
// everything before it is the structural prefix. A document that is a bare
// scalar produces a Stem with an empty Path.
type Stem struct {
	Path  []Segment
	Value Scalar
}

// Key returns the terminal key, or false for a bare scalar document.
func (s Stem) Key() (Segment, bool) {
	if len(s.Path) == 0 {
		return Segment{}, false
	}
	return s.Path[len(s.Path)-1], true
}

// Prefix returns the structural path without the terminal key.
func (s Stem) Prefix() []Segment {
	if len(s.Path) == 0 {
		return nil
	}
	return s.Path[:len(s.Path)-1]
}

// Flatten returns the stems of doc in document order. Every member and
// every array element is visited. Empty objects and arrays contribute
// nothing. Ranging over the result again walks the document again.
func Flatten(doc Node) iter.Seq[Stem] {
	return func(yield func(Stem) bool) {
		walk(doc, nil, yield)
	}
}

func walk(n Node, path []Segment, yield func(Stem) bool) bool {
	switch n.Kind() {
	case NodeObject:
		for _, m := range n.members {
			if !walk(m.Value, append(path, KeySegment(m.Name)), yield) {
				return false
			}
		}
		return true
	case NodeArray:
		for i, item := range n.items {
			if !walk(item, append(path, IndexSegment(i)), yield) {
				return false
			}
		}
		return true
	default:
		// path shares its backing array with siblings; hand out a copy.
		return yield(Stem{Path: slices.Clone(path), Value: n.leaf})
	}
}

// FlattenAll chains Flatten over a document sequence. The first error from
// docs is passed through and ends the sequence.
func FlattenAll(docs iter.Seq2[Node, error]) iter.Seq2[Stem, error] {
	return func(yield func(Stem, error) bool) {
		for doc, err := range docs {
			if err != nil {
				yield(Stem{}, err)
				return
			}
			for stem := range Flatten(doc) {
				if !yield(stem, nil) {
					return
				}
			}
		}
	}
}
