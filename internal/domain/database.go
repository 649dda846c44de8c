package domain

import "time"

// DatabaseDriver represents the type of database engine an export writes to.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// ExportTarget holds the metadata for connecting to the export database.
// The password is resolved from the environment at connect time.
type ExportTarget struct {
	Driver   DatabaseDriver `json:"driver"`
	Host     string         `json:"host"`     // hostname or file path (sqlite)
	Port     int            `json:"port"`     // 0 for sqlite
	Database string         `json:"database"` // db name or empty for sqlite
	Username string         `json:"username"`
	Password string         `json:"-"`
	SSLMode  string         `json:"sslMode"`
}

// ExportStatus is the state of an export run.
type ExportStatus string

const (
	ExportRunning ExportStatus = "running"
	ExportSuccess ExportStatus = "success"
	ExportFailed  ExportStatus = "error"
)

// ExportRun is a historical record of one asset export.
type ExportRun struct {
	ID          string         `json:"id"`
	Asset       string         `json:"asset"`
	Driver      DatabaseDriver `json:"driver"`
	Mode        string         `json:"mode"`
	Status      ExportStatus   `json:"status"`
	Tables      int            `json:"tables"`
	RowsWritten int            `json:"rowsWritten"`
	Error       string         `json:"error,omitempty"`
	DurationMs  int64          `json:"durationMs"`
	StartedAt   time.Time      `json:"startedAt"`
	FinishedAt  time.Time      `json:"finishedAt"`
}

// ExportRunStore persists export run history.
type ExportRunStore interface {
	CreateRun(r *ExportRun) error
	UpdateRun(r *ExportRun) error
	GetRun(id string) (*ExportRun, error)
	ListRuns(asset string, limit int) ([]ExportRun, error)
}
