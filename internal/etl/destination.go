package etl

import (
	"context"
	"strings"
	"unicode"
)

// ── Destination ────────────────────────────────────────────
// A Destination writes record set tables into a target system.
// Implementations live in dbclient/, one per driver family.
//
// Pattern: Singer target protocol.

// SyncMode determines how tables are written to the destination.
type SyncMode string

const (
	SyncReplace SyncMode = "replace" // drop the existing table, write fresh
	SyncAppend  SyncMode = "append"  // add rows, adding missing columns
)

func (m SyncMode) Valid() bool { return m == SyncReplace || m == SyncAppend }

// Destination writes tables to a target system.
type Destination interface {
	Write(ctx context.Context, target string, schema *Schema, t *Table, mode SyncMode) (int, error)
	Close() error
}

// TargetName derives the destination table name for a record set of an
// asset: lowercased, with every run of other characters collapsed to "_".
func TargetName(asset, recordPath string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(asset + "." + recordPath) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
