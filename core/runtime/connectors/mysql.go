package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLConnector implements the Connector interface for MySQL
type MySQLConnector struct {
	db *sql.DB
}

// NewMySQLConnector creates a new MySQL connector
func NewMySQLConnector(connectionString string) (*MySQLConnector, error) {
	dsn, err := mysqlDSN(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql database: %w", err)
	}

	return &MySQLConnector{db: db}, nil
}

// mysqlDSN converts a mysql:// URL to the go-sql-driver DSN format
// user:pass@tcp(host:port)/dbname.
func mysqlDSN(connectionString string) (string, error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return "", fmt.Errorf("invalid mysql URL: %w", err)
	}

	host := u.Host
	if u.Port() == "" {
		host = u.Hostname() + ":3306"
	}

	auth := ""
	if u.User != nil {
		auth = u.User.Username()
		if password, ok := u.User.Password(); ok {
			auth += ":" + password
		}
		auth += "@"
	}

	dsn := fmt.Sprintf("%stcp(%s)%s", auth, host, u.Path)
	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}
	return dsn, nil
}

// Kind returns the backend name
func (m *MySQLConnector) Kind() string {
	return "mysql"
}

// Query executes a SQL statement against MySQL with context support
func (m *MySQLConnector) Query(ctx context.Context, statement string, args ...any) ([]map[string]any, error) {
	rows, err := m.db.QueryContext(ctx, rewritePlaceholders(statement, false), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec executes a SQL statement that returns no rows
func (m *MySQLConnector) Exec(ctx context.Context, statement string, args ...any) error {
	if _, err := m.db.ExecContext(ctx, rewritePlaceholders(statement, false), args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Close closes the database connection
func (m *MySQLConnector) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
