package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxBodySize caps how much of a response body is read into memory.
const DefaultMaxBodySize = 10 << 20

var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport sends requests to BaseURL over net/http.
type HTTPTransport struct {
	baseURL     string
	httpClient  *http.Client
	maxBodySize int64
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		maxBodySize: DefaultMaxBodySize,
	}
}

// WithMaxBodySize changes the response body limit.
func (t *HTTPTransport) WithMaxBodySize(n int64) *HTTPTransport {
	t.maxBodySize = n
	return t
}

// WithHTTPClient swaps the underlying client, e.g. for tests.
func (t *HTTPTransport) WithHTTPClient(c *http.Client) *HTTPTransport {
	t.httpClient = c
	return t
}

func (t *HTTPTransport) url(req Request) string {
	u := t.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (t *HTTPTransport) Do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.url(req), body)
	if err != nil {
		return nil, &Error{Method: req.Method, Path: req.Path, Err: fmt.Errorf("build request: %w", err)}
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize+1))
	if err != nil {
		return nil, &Error{Method: req.Method, Path: req.Path, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > t.maxBodySize {
		return nil, &Error{Method: req.Method, Path: req.Path, Err: fmt.Errorf("%w: status %d, over %d bytes", ErrBodyTooLarge, resp.StatusCode, t.maxBodySize)}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}
