package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/co2ledger/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver.
	_ "modernc.org/sqlite"             // Register SQLite driver.
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Dialect selects the SQL flavour of the backing database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Compile-time check: Store implements domain.Repository.
var _ domain.Repository = (*Store)(nil)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Store implements domain.Repository on SQLite or PostgreSQL.
type Store struct {
	db      *sqlx.DB
	q       queryer
	dialect Dialect
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := ConfigureSQLite(db); err != nil {
		return nil, err
	}
	return NewFromDB(db, DialectSQLite)
}

// NewPostgres opens a PostgreSQL database through pgx, runs migrations, and
// returns a ready store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return NewFromDB(db, DialectPostgres)
}

// ConfigureSQLite applies the connection settings the store relies on.
func ConfigureSQLite(db *sql.DB) error {
	// A single connection serializes writers; an in-memory database would
	// otherwise be private to each pooled connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	return nil
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB, dialect Dialect) (*Store, error) {
	if err := runMigrations(db, dialect); err != nil {
		return nil, err
	}

	// sqlx only uses the driver name to pick the bind style.
	bindName := "sqlite3"
	if dialect == DialectPostgres {
		bindName = "pgx"
	}
	x := sqlx.NewDb(db, bindName)
	return &Store{db: x, q: x, dialect: dialect}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Dialect reports the SQL flavour of the store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func runMigrations(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+string(dialect)); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// Atomic runs fn inside a database transaction. Nested calls join the
// enclosing transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Repository) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&Store{q: tx, dialect: s.dialect}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) rebind(query string) string {
	return s.q.Rebind(query)
}

// Timestamps are fixed-width UTC text in SQLite so they sort lexically.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// timeArg converts t for use as a query argument.
func (s *Store) timeArg(t time.Time) any {
	if s.dialect == DialectPostgres {
		return t.UTC()
	}
	return t.UTC().Format(timeFormat)
}

// dateArg converts an optional calendar date for use as a query argument.
func (s *Store) dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	if s.dialect == DialectPostgres {
		return *t
	}
	return t.Format(time.DateOnly)
}

// parseTime reads a timestamp or date column. Both dialects hand back text
// here: SQLite stores it, and database/sql formats PostgreSQL time values
// as RFC 3339 when scanning into strings.
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", v, err)
	}
	return t, nil
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation reports whether err is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// recordFilter appends the shared cylinder and time-range criteria of a
// RecordFilter on the given columns.
func (s *Store) recordFilter(where []string, args []any, f domain.RecordFilter, cylinderCol, timeCol string) ([]string, []any) {
	if f.CylinderID != "" && cylinderCol != "" {
		where = append(where, cylinderCol+" = ?")
		args = append(args, f.CylinderID)
	}
	if f.Since != nil {
		where = append(where, timeCol+" >= ?")
		args = append(args, s.timeArg(*f.Since))
	}
	if f.Until != nil {
		where = append(where, timeCol+" < ?")
		args = append(args, s.timeArg(*f.Until))
	}
	return where, args
}

// finish appends WHERE, ORDER BY, LIMIT and OFFSET clauses and rebinds.
func (s *Store) finish(query string, where []string, args []any, orderBy string, limit, offset int) (string, []any) {
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	} else if offset > 0 && s.dialect == DialectSQLite {
		// SQLite needs a LIMIT before OFFSET.
		query += " LIMIT -1"
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return s.rebind(query), args
}
