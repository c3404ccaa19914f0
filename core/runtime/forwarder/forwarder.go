package forwarder

import (
	"context"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/dbfwd/dbfwd/core/shared/errors"
)

// Request describes one forward attempt. Credentials are optional; when
// either is missing the request goes out unauthenticated.
type Request struct {
	URL      string
	Method   string
	Payload  string
	Username string
	Password string
}

// Result is the recorded outcome of a forward. A non-2xx status is a normal
// result, not an error.
type Result struct {
	Success      bool
	StatusCode   int
	ResponseBody string
}

// Forwarder sends payloads to the configured API endpoint.
type Forwarder struct {
	client *http.Client
}

// New creates a forwarder using the default HTTP client.
func New() *Forwarder {
	return NewWithClient(&http.Client{})
}

// NewWithClient creates a forwarder with a caller-provided HTTP client.
func NewWithClient(client *http.Client) *Forwarder {
	return &Forwarder{client: client}
}

// Forward sends the payload as a JSON request body and captures status and
// response body regardless of status. It fails with a network error only on
// transport-level failure.
func (f *Forwarder) Forward(ctx context.Context, req Request) (*Result, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, strings.NewReader(req.Payload))
	if err != nil {
		return nil, apperrors.NetworkError("failed to build API request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Username != "" && req.Password != "" {
		httpReq.SetBasicAuth(req.Username, req.Password)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NetworkError("API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NetworkError("failed to read API response", err)
	}

	return &Result{
		Success:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode:   resp.StatusCode,
		ResponseBody: string(body),
	}, nil
}
