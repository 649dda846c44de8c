package dbclient

import (
	"fmt"
	"strings"

	"assetdash/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	quote: func(name string) string {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	},
	placeholder: func(int) string { return "?" },
	types: map[string]string{
		"number":  "DOUBLE",
		"boolean": "BOOLEAN",
		"text":    "TEXT",
	},
}

// buildMySQLDSN constructs a MySQL DSN from an ExportTarget.
func buildMySQLDSN(t domain.ExportTarget) string {
	port := t.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		t.Username, t.Password, t.Host, port, t.Database,
	)
	if t.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
