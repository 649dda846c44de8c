package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"assetdash/internal/etl"
)

// dialect holds what differs between the SQL engines we export to.
type dialect struct {
	quote       func(name string) string
	placeholder func(i int) string // 1-based
	types       map[string]string  // etl field type → column type
}

func (d dialect) columnType(fieldType string) string {
	if t, ok := d.types[fieldType]; ok {
		return t
	}
	return d.types["text"]
}

// sqlWriter is the shared Destination for MySQL, Postgres, and SQLite.
type sqlWriter struct {
	driverName string
	dialect    dialect
	db         *sql.DB
	logger     *slog.Logger
}

var _ etl.Destination = (*sqlWriter)(nil)

func newSQLWriter(driverName, dsn string, d dialect, logger *slog.Logger) (*sqlWriter, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	return &sqlWriter{driverName: driverName, dialect: d, db: db, logger: logger}, nil
}

// Write stores t in the table target. Replace drops and recreates the
// table; append creates it when missing and adds columns it lacks. Rows go
// in one transaction.
func (w *sqlWriter) Write(ctx context.Context, target string, schema *etl.Schema, t *etl.Table, mode etl.SyncMode) (int, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if mode == etl.SyncReplace {
		if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+w.dialect.quote(target)); err != nil {
			return 0, fmt.Errorf("drop %s: %w", target, err)
		}
	}
	if _, err := w.db.ExecContext(ctx, buildCreateTable(w.dialect, target, schema)); err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}
	if mode == etl.SyncAppend {
		if err := w.ensureColumns(ctx, target, schema); err != nil {
			return 0, fmt.Errorf("ensure columns: %w", err)
		}
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, buildInsert(w.dialect, target, schema))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	names := schema.FieldNames()
	for i, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, rowArgs(row, names)...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	w.logger.Debug("dbclient: wrote table", "driver", w.driverName, "table", target, "rows", t.Len())
	return t.Len(), nil
}

// ensureColumns adds every schema field the existing table lacks.
func (w *sqlWriter) ensureColumns(ctx context.Context, target string, schema *etl.Schema) error {
	existing, err := w.columns(ctx, target)
	if err != nil {
		return err
	}
	for _, f := range schema.Fields {
		if lo.Contains(existing, f.Name) {
			continue
		}
		q := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			w.dialect.quote(target), w.dialect.quote(f.Name), w.dialect.columnType(f.Type))
		if _, err := w.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("add column %s: %w", f.Name, err)
		}
	}
	return nil
}

// columns lists the column names of an existing table.
func (w *sqlWriter) columns(ctx context.Context, table string) ([]string, error) {
	rows, err := w.db.QueryContext(ctx, "SELECT * FROM "+w.dialect.quote(table)+" WHERE 1=0")
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()
	return rows.Columns()
}

func (w *sqlWriter) Close() error {
	return w.db.Close()
}

func buildCreateTable(d dialect, table string, schema *etl.Schema) string {
	cols := lo.Map(schema.Fields, func(f etl.Field, _ int) string {
		return d.quote(f.Name) + " " + d.columnType(f.Type)
	})
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.quote(table), strings.Join(cols, ", "))
}

func buildInsert(d dialect, table string, schema *etl.Schema) string {
	cols := make([]string, len(schema.Fields))
	marks := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = d.quote(f.Name)
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// rowArgs lays out a row in column order; absent cells become NULL.
func rowArgs(row etl.Row, names []string) []any {
	args := make([]any, len(names))
	for i, n := range names {
		if v, ok := row[n]; ok {
			args[i] = v.Any()
		}
	}
	return args
}
