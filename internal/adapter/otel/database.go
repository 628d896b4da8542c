package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver.
	_ "modernc.org/sqlite"             // Register SQLite driver.
)

// Driver names accepted by OpenDB.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// OpenDB opens a database with OpenTelemetry instrumentation. The returned
// *sql.DB traces every SQL operation and reports connection pool metrics.
// Connection settings (pool size, pragmas) are left to the caller.
func OpenDB(driverName, dataSourceName string) (*sql.DB, error) {
	system, err := dbSystem(driverName)
	if err != nil {
		return nil, err
	}

	db, err := otelsql.Open(driverName, dataSourceName,
		otelsql.WithAttributes(system),
	)
	if err != nil {
		return nil, fmt.Errorf("opening instrumented database: %w", err)
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithAttributes(system),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering db stats metrics: %w", err)
	}

	return db, nil
}

func dbSystem(driverName string) (attribute.KeyValue, error) {
	switch driverName {
	case DriverSQLite:
		return semconv.DBSystemSqlite, nil
	case DriverPostgres:
		return semconv.DBSystemPostgreSQL, nil
	}
	return attribute.KeyValue{}, fmt.Errorf("unsupported database driver: %q", driverName)
}
