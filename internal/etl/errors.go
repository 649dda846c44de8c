package etl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrNotNarrow is returned when a pivot input lacks the key or value column.
	ErrNotNarrow = errors.New("table has no key/value columns")
	// ErrNotWide is returned when an unpivot input has no pivoted columns.
	ErrNotWide = errors.New("table has no pivoted columns")
	// ErrColumnCollision is returned when a pivoted column name clashes with
	// an existing one.
	ErrColumnCollision = errors.New("pivoted column name collides")
)

// MalformedInputError reports a line that is not valid JSON.
type MalformedInputError struct {
	File string
	Line int
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// AmbiguousPivotError reports two narrow rows that map onto the same wide
// cell.
type AmbiguousPivotError struct {
	Identity []Cell
	Key      Scalar
}

func (e *AmbiguousPivotError) Error() string {
	ids := lo.Map(e.Identity, func(c Cell, _ int) string {
		return c.Name + "=" + c.Value.String()
	})
	return fmt.Sprintf("ambiguous pivot: key %q repeated for (%s)", e.Key.String(), strings.Join(ids, ", "))
}

// NoJoinKeyError reports two tables that share no column to join on.
type NoJoinKeyError struct {
	Left  []string
	Right []string
}

func (e *NoJoinKeyError) Error() string {
	return fmt.Sprintf("no join key: [%s] and [%s] share no columns",
		strings.Join(e.Left, ", "), strings.Join(e.Right, ", "))
}
