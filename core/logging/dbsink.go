package logging

import (
	"context"
	"fmt"

	"github.com/dbfwd/dbfwd/core/runtime/connectors"
)

// LogTable is the table the database sink appends entries to.
const LogTable = "db_fwd_logs"

// ddl holds the per-backend CREATE TABLE statement. Only the id column
// syntax differs between backends.
var ddl = map[string]string{
	"postgres": `CREATE TABLE IF NOT EXISTS ` + LogTable + ` (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP,
		level VARCHAR(10),
		category VARCHAR(10),
		message TEXT
	)`,
	"mysql": `CREATE TABLE IF NOT EXISTS ` + LogTable + ` (
		id INT AUTO_INCREMENT PRIMARY KEY,
		timestamp TIMESTAMP,
		level VARCHAR(10),
		category VARCHAR(10),
		message TEXT
	)`,
	"sqlite": `CREATE TABLE IF NOT EXISTS ` + LogTable + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP,
		level VARCHAR(10),
		category VARCHAR(10),
		message TEXT
	)`,
}

const insertEntry = `INSERT INTO ` + LogTable + ` (timestamp, level, category, message) VALUES (%s, %s, %s, %s)`

// DBSink appends entries to the db_fwd_logs table of the configured log
// database.
type DBSink struct {
	conn connectors.Connector
}

// NewDBSink connects to the log database and creates the log table when it
// does not exist yet.
func NewDBSink(ctx context.Context, logDBURL string) (*DBSink, error) {
	conn, err := connectors.New(logDBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect log database: %w", err)
	}

	statement, ok := ddl[conn.Kind()]
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("no log table definition for backend '%s'", conn.Kind())
	}
	if err := conn.Exec(ctx, statement); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create log table: %w", err)
	}

	return &DBSink{conn: conn}, nil
}

// Append inserts one entry into the log table.
func (s *DBSink) Append(ctx context.Context, entry Entry) error {
	return s.conn.Exec(ctx, insertEntry,
		entry.Timestamp, entry.Level.String(), string(entry.Category), entry.Payload)
}

// Close closes the log database connection.
func (s *DBSink) Close() error {
	return s.conn.Close()
}
