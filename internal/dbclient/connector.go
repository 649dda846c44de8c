package dbclient

import (
	"fmt"
	"log/slog"

	"assetdash/internal/domain"
	"assetdash/internal/etl"
)

// NewDestination opens an export destination for target. The caller owns
// the returned value and must Close it.
func NewDestination(target domain.ExportTarget, logger *slog.Logger) (etl.Destination, error) {
	switch target.Driver {
	case domain.DatabaseDriverSQLite:
		return newSQLiteWriter(target, logger)
	case domain.DatabaseDriverMySQL:
		return newSQLWriter("mysql", buildMySQLDSN(target), mysqlDialect, logger)
	case domain.DatabaseDriverPostgres:
		return newSQLWriter("postgres", buildPostgresDSN(target), postgresDialect, logger)
	case domain.DatabaseDriverMongoDB:
		return newMongoWriter(target, logger)
	default:
		return nil, fmt.Errorf("unsupported driver: %q", target.Driver)
	}
}
