package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConnector implements the Connector interface for SQLite
type SQLiteConnector struct {
	db *sql.DB
}

// NewSQLiteConnector creates a new SQLite connector. The URL path is the
// database file; sqlite://:memory: opens an in-memory database.
func NewSQLiteConnector(connectionString string) (*SQLiteConnector, error) {
	path := strings.TrimPrefix(connectionString, "sqlite3://")
	path = strings.TrimPrefix(path, "sqlite://")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteConnector{db: db}, nil
}

// Kind returns the backend name
func (s *SQLiteConnector) Kind() string {
	return "sqlite"
}

// Query executes a SQL statement against SQLite with context support
func (s *SQLiteConnector) Query(ctx context.Context, statement string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, rewritePlaceholders(statement, false), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec executes a SQL statement that returns no rows
func (s *SQLiteConnector) Exec(ctx context.Context, statement string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, rewritePlaceholders(statement, false), args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteConnector) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
