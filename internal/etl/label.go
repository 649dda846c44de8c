package etl

import (
	"strings"

	"github.com/samber/lo"
)

// Label is a compound column name: an ordered list of typed levels. A pivot
// produces two-level labels such as ("value", "sales"); plain columns carry
// a single level.
type Label struct {
	levels []Scalar
}

func NewLabel(levels ...Scalar) Label { return Label{levels: levels} }

func (l Label) Levels() []Scalar { return l.levels }
func (l Label) Depth() int { return len(l.levels) }

// Render flattens the label into a display name.
//
// A multi-level label led by "value" drops that level and dot-joins the
// rest. Any other multi-level label concatenates its levels. A single level
// is rendered as is.
func (l Label) Render() string {
	parts := lo.Map(l.levels, func(s Scalar, _ int) string { return s.String() })
	switch {
	case len(parts) == 0:
		return ""
	case len(parts) == 1:
		return parts[0]
	case parts[0] == ValueColumn && l.levels[0].Kind() == KindString:
		return strings.TrimSpace(strings.Join(parts[1:], "."))
	default:
		return strings.TrimSpace(strings.Join(parts, ""))
	}
}

func (l Label) String() string { return l.Render() }
