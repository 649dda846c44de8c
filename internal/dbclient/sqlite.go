package dbclient

import (
	"errors"
	"log/slog"
	"strings"

	"assetdash/internal/domain"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	quote: func(name string) string {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	},
	placeholder: func(int) string { return "?" },
	types: map[string]string{
		"number":  "REAL",
		"boolean": "INTEGER",
		"text":    "TEXT",
	},
}

// newSQLiteWriter opens an export target that is a SQLite file; Host holds
// its path.
func newSQLiteWriter(t domain.ExportTarget, logger *slog.Logger) (*sqlWriter, error) {
	if t.Host == "" {
		return nil, errors.New("sqlite export needs a file path in host")
	}
	dsn := t.Host + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	w, err := newSQLWriter("sqlite", dsn, sqliteDialect, logger)
	if err != nil {
		return nil, err
	}
	// One writer at a time.
	w.db.SetMaxOpenConns(1)
	return w, nil
}
