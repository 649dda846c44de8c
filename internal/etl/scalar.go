package etl

import (
	"encoding/json"
	"math"
	"strconv"
)

// ── Scalar ─────────────────────────────────────────────────
// A leaf value of a JSON document, and the cell type of every Table.

// ScalarKind identifies the concrete type stored in a Scalar.
type ScalarKind uint8

const (
	KindNull ScalarKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Scalar is a small tagged value. The zero value is null.
type Scalar struct {
	kind ScalarKind
	b    bool
	i    int64
	f    float64
	s    string
}

func Null() Scalar { return Scalar{} }
func Bool(v bool) Scalar { return Scalar{kind: KindBool, b: v} }
func Int(v int64) Scalar { return Scalar{kind: KindInt, i: v} }
func Float(v float64) Scalar { return Scalar{kind: KindFloat, f: v} }
func Str(v string) Scalar { return Scalar{kind: KindString, s: v} }

func (s Scalar) Kind() ScalarKind { return s.kind }
func (s Scalar) IsNull() bool { return s.kind == KindNull }
func (s Scalar) IsNumeric() bool { return s.kind == KindInt || s.kind == KindFloat }

// TypeName returns the type name used in group keys.
// The names match what the dashboards were historically keyed on.
func (s Scalar) TypeName() string {
	switch s.kind {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	default:
		return "NoneType"
	}
}

// Text returns the string payload and whether s holds a string.
func (s Scalar) Text() (string, bool) { return s.s, s.kind == KindString }

// Int64 returns the integer payload and whether s holds an int.
func (s Scalar) Int64() (int64, bool) { return s.i, s.kind == KindInt }

// Float64 returns the numeric payload for ints and floats.
func (s Scalar) Float64() (float64, bool) {
	switch s.kind {
	case KindInt:
		return float64(s.i), true
	case KindFloat:
		return s.f, true
	default:
		return 0, false
	}
}

// Any converts s to the plain Go value encoding/json would have produced.
// Floats outside the float64 range come back as ±Inf.
func (s Scalar) Any() any {
	switch s.kind {
	case KindBool:
		return s.b
	case KindInt:
		return s.i
	case KindFloat:
		return s.f
	case KindString:
		return s.s
	default:
		return nil
	}
}

// String renders s for column labels and previews.
func (s Scalar) String() string {
	switch s.kind {
	case KindBool:
		if s.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(s.i, 10)
	case KindFloat:
		return formatFloat(s.f)
	case KindString:
		return s.s
	default:
		return ""
	}
}

func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindBool:
		return s.b == o.b
	case KindInt:
		return s.i == o.i
	case KindFloat:
		return s.f == o.f
	case KindString:
		return s.s == o.s
	default:
		return true
	}
}

// identity is a type-tagged encoding of s, usable as a map key.
func (s Scalar) identity() string {
	switch s.kind {
	case KindBool:
		if s.b {
			return "b1"
		}
		return "b0"
	case KindInt:
		return "i" + strconv.FormatInt(s.i, 10)
	case KindFloat:
		return "f" + strconv.FormatFloat(s.f, 'g', -1, 64)
	case KindString:
		return "s" + s.s
	default:
		return "n"
	}
}

// JSONValue is Any with non-finite floats rendered as text, since JSON has
// no literal for them.
func (s Scalar) JSONValue() any {
	if s.kind == KindFloat && (math.IsInf(s.f, 0) || math.IsNaN(s.f)) {
		return formatFloat(s.f)
	}
	return s.Any()
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.JSONValue())
}

// formatFloat keeps a trailing ".0" on integral values so 1.0 and 1 stay
// distinguishable in rendered labels.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
