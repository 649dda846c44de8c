package dbclient

import (
	"fmt"

	"github.com/lib/pq"

	"assetdash/internal/domain"
)

var postgresDialect = dialect{
	quote:       pq.QuoteIdentifier,
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	types: map[string]string{
		"number":  "DOUBLE PRECISION",
		"boolean": "BOOLEAN",
		"text":    "TEXT",
	},
}

// buildPostgresDSN constructs a Postgres connection string from an ExportTarget.
func buildPostgresDSN(t domain.ExportTarget) string {
	port := t.Port
	if port == 0 {
		port = 5432
	}
	sslMode := t.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		t.Host, port, t.Username, t.Password, t.Database, sslMode,
	)
}
