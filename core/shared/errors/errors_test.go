package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := ConfigError("database URL not configured", nil)
	assert.Equal(t, "CONFIG_ERROR: database URL not configured", err.Error())

	wrapped := QueryError("query execution failed", stderrors.New("connection refused"))
	assert.Equal(t, "QUERY_ERROR: query execution failed (connection refused)", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NetworkError("API request failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeConfig, CodeOf(ConfigError("x", nil)))
	assert.Equal(t, ErrCodeQuery, CodeOf(fmt.Errorf("outer: %w", QueryError("x", nil))))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{ConfigError("x", nil), ExitConfig},
		{QueryError("x", nil), ExitQuery},
		{NetworkError("x", nil), ExitNetwork},
		{stderrors.New("plain"), ExitInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err))
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsConfigError(ConfigError("x", nil)))
	assert.True(t, IsQueryError(QueryError("x", nil)))
	assert.True(t, IsNetworkError(NetworkError("x", nil)))
	assert.False(t, IsConfigError(QueryError("x", nil)))
}
