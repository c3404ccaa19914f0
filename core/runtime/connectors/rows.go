package connectors

import (
	"database/sql"
	"fmt"
	"strings"
)

// scanRows reads all rows into maps of column name to value, converting
// []byte values to strings.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = val
			}
		}

		results = append(results, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// rewritePlaceholders converts positional %s placeholders to the driver's
// parameter syntax. numbered=true produces $1..$n (postgres), otherwise ?
// (mysql, sqlite). A doubled %% is unescaped to a literal percent sign.
func rewritePlaceholders(statement string, numbered bool) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(statement); i++ {
		if statement[i] != '%' || i+1 >= len(statement) {
			b.WriteByte(statement[i])
			continue
		}
		switch statement[i+1] {
		case '%':
			b.WriteByte('%')
			i++
		case 's':
			n++
			if numbered {
				fmt.Fprintf(&b, "$%d", n)
			} else {
				b.WriteByte('?')
			}
			i++
		default:
			b.WriteByte(statement[i])
		}
	}
	return b.String()
}
