package executor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dbfwd/dbfwd/core/runtime/connectors"
	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// Execute runs the parameterized query and returns its single scalar value
// as text. It fails with a query error when the result is not exactly one
// row with exactly one column, or when execution itself fails. The value is
// treated as opaque text; no JSON validation happens here.
func Execute(ctx context.Context, conn connectors.Connector, queryText string, params []string) (string, error) {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}

	rows, err := conn.Query(ctx, queryText, args...)
	if err != nil {
		return "", apperrors.QueryError("query execution failed", err)
	}

	if len(rows) == 0 {
		return "", apperrors.QueryError("query returned no results", nil)
	}
	if len(rows) > 1 {
		return "", apperrors.QueryError("query returned more than one row", nil)
	}
	if len(rows[0]) != 1 {
		return "", apperrors.QueryError("query must return exactly one field", nil)
	}

	for _, value := range rows[0] {
		return valueToText(value), nil
	}
	return "", apperrors.QueryError("query must return exactly one field", nil)
}

// valueToText converts a scanned column value to its text form. The payload
// is expected to be JSON text, so nil maps to the JSON null literal.
func valueToText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
