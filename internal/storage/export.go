package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assetdash/internal/domain"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("export run not found")

// ExportStore implements domain.ExportRunStore on SQLite.
type ExportStore struct {
	db *DB
}

// NewExportStore creates a new ExportStore.
func NewExportStore(db *DB) *ExportStore {
	return &ExportStore{db: db}
}

var _ domain.ExportRunStore = (*ExportStore)(nil)

// CreateRun assigns an id and inserts r.
func (s *ExportStore) CreateRun(r *domain.ExportRun) error {
	r.ID = uuid.New().String()
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if r.Status == "" {
		r.Status = domain.ExportRunning
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO export_runs (id, asset, driver, mode, status, tables, rows_written, error, duration_ms, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Asset, r.Driver, r.Mode, r.Status, r.Tables, r.RowsWritten, r.Error, r.DurationMs,
		r.StartedAt, nullTime(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("create export run: %w", err)
	}
	return nil
}

// UpdateRun stores the outcome fields of r.
func (s *ExportStore) UpdateRun(r *domain.ExportRun) error {
	res, err := s.db.conn.Exec(
		`UPDATE export_runs SET status=?, tables=?, rows_written=?, error=?, duration_ms=?, finished_at=?
		 WHERE id=?`,
		r.Status, r.Tables, r.RowsWritten, r.Error, r.DurationMs, nullTime(r.FinishedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("update export run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, r.ID)
	}
	return nil
}

func (s *ExportStore) GetRun(id string) (*domain.ExportRun, error) {
	row := s.db.conn.QueryRow(
		`SELECT id, asset, driver, mode, status, tables, rows_written, error, duration_ms, started_at, finished_at
		 FROM export_runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first. An empty asset lists runs of
// every asset.
func (s *ExportStore) ListRuns(asset string, limit int) ([]domain.ExportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.conn.Query(
		`SELECT id, asset, driver, mode, status, tables, rows_written, error, duration_ms, started_at, finished_at
		 FROM export_runs WHERE ? = '' OR asset = ? ORDER BY started_at DESC LIMIT ?`,
		asset, asset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list export runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ExportRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*domain.ExportRun, error) {
	var (
		r        domain.ExportRun
		finished sql.NullTime
	)
	err := sc.Scan(&r.ID, &r.Asset, &r.Driver, &r.Mode, &r.Status, &r.Tables, &r.RowsWritten,
		&r.Error, &r.DurationMs, &r.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
