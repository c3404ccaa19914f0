package runtime

import (
	"context"
	"strings"

	"github.com/dbfwd/dbfwd/core/config"
	"github.com/dbfwd/dbfwd/core/logging"
	"github.com/dbfwd/dbfwd/core/runtime/connectors"
	"github.com/dbfwd/dbfwd/core/runtime/executor"
	"github.com/dbfwd/dbfwd/core/runtime/forwarder"
	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// Runtime sequences one forward run: execute the query, forward the payload,
// log every stage. One Runtime serves one process invocation.
type Runtime struct {
	settings  *config.ResolvedSettings
	log       *logging.Logger
	forwarder *forwarder.Forwarder
	connect   func(url string) (connectors.Connector, error)
}

// Option customizes a Runtime, mainly for tests.
type Option func(*Runtime)

// WithForwarder replaces the HTTP forwarder.
func WithForwarder(f *forwarder.Forwarder) Option {
	return func(r *Runtime) { r.forwarder = f }
}

// WithConnectorFactory replaces how database connections are opened.
func WithConnectorFactory(connect func(url string) (connectors.Connector, error)) Option {
	return func(r *Runtime) { r.connect = connect }
}

// New creates a runtime for the resolved settings.
func New(settings *config.ResolvedSettings, log *logging.Logger, opts ...Option) *Runtime {
	r := &Runtime{
		settings:  settings,
		log:       log,
		forwarder: forwarder.New(),
		connect:   connectors.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline and returns the forward result. A returned error
// carries the failure category; a non-2xx response returns a result and no
// error. Every exit path has been logged before Run returns.
func (r *Runtime) Run(ctx context.Context, queryName string) (*forwarder.Result, error) {
	r.log.Info(ctx, logging.CategoryRun, "starting forward for query '%s'", queryName)

	payload, err := r.executeQuery(ctx)
	if err != nil {
		r.log.Error(ctx, "%v", err)
		return nil, err
	}

	result, err := r.forward(ctx, payload)
	if err != nil {
		r.log.Error(ctx, "%v", err)
		return nil, err
	}

	if result.Success {
		r.log.Info(ctx, logging.CategoryRun, "completed successfully")
	}
	return result, nil
}

func (r *Runtime) executeQuery(ctx context.Context) (string, error) {
	conn, err := r.connect(r.settings.DBURL)
	if err != nil {
		return "", apperrors.QueryError("failed to connect database", err)
	}
	defer conn.Close()

	r.log.Info(ctx, logging.CategoryQuery, "executing query: %s", r.settings.QueryText)
	r.log.Debug(ctx, logging.CategoryQuery, "query parameters: [%s]", strings.Join(r.settings.QueryParams, ", "))

	payload, err := executor.Execute(ctx, conn, r.settings.QueryText, r.settings.QueryParams)
	if err != nil {
		return "", err
	}

	r.log.Debug(ctx, logging.CategoryQuery, "query result: %s", payload)
	return payload, nil
}

func (r *Runtime) forward(ctx context.Context, payload string) (*forwarder.Result, error) {
	r.log.Info(ctx, logging.CategoryRequest, "forwarding to API: %s %s", r.settings.APIMethod, r.settings.APIURL)
	r.log.Debug(ctx, logging.CategoryRequest, "request payload: %s", payload)

	result, err := r.forwarder.Forward(ctx, forwarder.Request{
		URL:      r.settings.APIURL,
		Method:   r.settings.APIMethod,
		Payload:  payload,
		Username: r.settings.APIUsername,
		Password: r.settings.APIPassword,
	})
	if err != nil {
		return nil, err
	}

	r.log.Info(ctx, logging.CategoryResponse, "API response status: %d", result.StatusCode)
	r.log.Debug(ctx, logging.CategoryResponse, "response body: %s", result.ResponseBody)
	return result, nil
}
