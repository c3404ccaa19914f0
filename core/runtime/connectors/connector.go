package connectors

import (
	"context"
	"fmt"
	"strings"
)

// Connector defines the interface for database backends. Statements use
// positional %s placeholders; each connector rewrites them to its driver's
// native parameter syntax and passes values as bind arguments.
type Connector interface {
	// Kind returns the backend name ("postgres", "mysql", "sqlite").
	Kind() string

	// Query executes a statement and returns all rows, where each row is a
	// map of column name to value.
	Query(ctx context.Context, statement string, args ...any) ([]map[string]any, error)

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, statement string, args ...any) error

	// Close closes the connector and releases resources
	Close() error
}

// New creates a connector for the given connection URL based on its scheme.
func New(url string) (Connector, error) {
	switch {
	case hasScheme(url, "postgres", "postgresql"):
		return NewPostgresConnector(url)
	case hasScheme(url, "mysql"):
		return NewMySQLConnector(url)
	case hasScheme(url, "sqlite", "sqlite3"):
		return NewSQLiteConnector(url)
	default:
		return nil, fmt.Errorf("unsupported database URL scheme in '%s'", Redact(url))
	}
}

func hasScheme(url string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s+"://") {
			return true
		}
	}
	return false
}

// Redact strips the userinfo portion of a connection URL for log and error
// messages.
func Redact(url string) string {
	at := strings.LastIndex(url, "@")
	if at == -1 {
		return url
	}
	scheme := strings.Index(url, "://")
	if scheme == -1 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
