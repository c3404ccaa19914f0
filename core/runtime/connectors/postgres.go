package connectors

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresConnector implements the Connector interface for PostgreSQL
type PostgresConnector struct {
	db *sql.DB
}

// NewPostgresConnector creates a new PostgreSQL connector
func NewPostgresConnector(connectionString string) (*PostgresConnector, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	return &PostgresConnector{db: db}, nil
}

// Kind returns the backend name
func (p *PostgresConnector) Kind() string {
	return "postgres"
}

// Query executes a SQL statement against PostgreSQL with context support
func (p *PostgresConnector) Query(ctx context.Context, statement string, args ...any) ([]map[string]any, error) {
	rows, err := p.db.QueryContext(ctx, rewritePlaceholders(statement, true), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec executes a SQL statement that returns no rows
func (p *PostgresConnector) Exec(ctx context.Context, statement string, args ...any) error {
	if _, err := p.db.ExecContext(ctx, rewritePlaceholders(statement, true), args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Close closes the database connection
func (p *PostgresConnector) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
