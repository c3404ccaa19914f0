package runtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbfwd/dbfwd/core/config"
	"github.com/dbfwd/dbfwd/core/logging"
	"github.com/dbfwd/dbfwd/core/runtime/connectors"
	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// memSink records appended entries for assertions.
type memSink struct {
	entries []logging.Entry
}

func (m *memSink) Append(_ context.Context, entry logging.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memSink) Close() error { return nil }

func (m *memSink) categories() []logging.Category {
	var cats []logging.Category
	for _, e := range m.entries {
		cats = append(cats, e.Category)
	}
	return cats
}

// stubConnector serves canned rows without a database.
type stubConnector struct {
	rows []map[string]any
	err  error
}

func (s *stubConnector) Kind() string { return "stub" }

func (s *stubConnector) Query(ctx context.Context, statement string, args ...any) ([]map[string]any, error) {
	return s.rows, s.err
}

func (s *stubConnector) Exec(ctx context.Context, statement string, args ...any) error {
	return s.err
}

func (s *stubConnector) Close() error { return nil }

func stubFactory(conn connectors.Connector, err error) func(string) (connectors.Connector, error) {
	return func(string) (connectors.Connector, error) { return conn, err }
}

func settingsFor(apiURL string) *config.ResolvedSettings {
	return &config.ResolvedSettings{
		LogLevel:    "info",
		LogFile:     "db_fwd.log",
		DBURL:       "stub://main",
		APIURL:      apiURL,
		APIMethod:   "POST",
		QueryText:   "SELECT payload FROM events WHERE id = %s",
		QueryParams: []string{"1"},
	}
}

func TestRun_SuccessfulForward(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	file := &memSink{}
	log := logging.New(logging.LevelInfo, file, nil)
	conn := &stubConnector{rows: []map[string]any{{"payload": `{"value": 1}`}}}

	rt := New(settingsFor(server.URL), log, WithConnectorFactory(stubFactory(conn, nil)))
	result, err := rt.Run(context.Background(), "queryname1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.EqualValues(t, 1, requests.Load())

	cats := file.categories()
	assert.Contains(t, cats, logging.CategoryQuery)
	assert.Contains(t, cats, logging.CategoryRequest)
	assert.Contains(t, cats, logging.CategoryResponse)
	assert.NotContains(t, cats, logging.CategoryError)
}

func TestRun_MultiRowResultNeverReachesAPI(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	file := &memSink{}
	log := logging.New(logging.LevelInfo, file, nil)
	conn := &stubConnector{rows: []map[string]any{{"payload": "a"}, {"payload": "b"}}}

	rt := New(settingsFor(server.URL), log, WithConnectorFactory(stubFactory(conn, nil)))
	_, err := rt.Run(context.Background(), "queryname1")
	require.Error(t, err)

	assert.True(t, apperrors.IsQueryError(err))
	assert.EqualValues(t, 0, requests.Load(), "no HTTP request may be sent after a query error")

	cats := file.categories()
	assert.Contains(t, cats, logging.CategoryError)
	assert.NotContains(t, cats, logging.CategoryRequest)
}

func TestRun_ConnectionFailureIsQueryError(t *testing.T) {
	file := &memSink{}
	log := logging.New(logging.LevelInfo, file, nil)

	rt := New(settingsFor("http://unused.invalid"), log,
		WithConnectorFactory(stubFactory(nil, errors.New("connection refused"))))
	_, err := rt.Run(context.Background(), "queryname1")
	require.Error(t, err)

	assert.True(t, apperrors.IsQueryError(err))
	assert.Contains(t, file.categories(), logging.CategoryError)
}

func TestRun_NonSuccessResponseIsRecordedNotErrored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	file := &memSink{}
	log := logging.New(logging.LevelInfo, file, nil)
	conn := &stubConnector{rows: []map[string]any{{"payload": `{"value": 1}`}}}

	rt := New(settingsFor(server.URL), log, WithConnectorFactory(stubFactory(conn, nil)))
	result, err := rt.Run(context.Background(), "queryname1")
	require.NoError(t, err, "a non-2xx response is a recorded outcome, not an error")

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var responsePayloads []string
	for _, e := range file.entries {
		if e.Category == logging.CategoryResponse {
			responsePayloads = append(responsePayloads, e.Payload)
		}
	}
	require.NotEmpty(t, responsePayloads)
	assert.Contains(t, responsePayloads[0], "404")
	assert.NotContains(t, file.categories(), logging.CategoryError)
}

func TestRun_TransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	file := &memSink{}
	log := logging.New(logging.LevelInfo, file, nil)
	conn := &stubConnector{rows: []map[string]any{{"payload": `{"value": 1}`}}}

	rt := New(settingsFor(server.URL), log, WithConnectorFactory(stubFactory(conn, nil)))
	_, err := rt.Run(context.Background(), "queryname1")
	require.Error(t, err)

	assert.True(t, apperrors.IsNetworkError(err))
	assert.Contains(t, file.categories(), logging.CategoryError)
}
