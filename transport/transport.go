package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
)

// ErrTransport marks failures below HTTP: DNS, connect, TLS, reading the body.
var ErrTransport = errors.ErrTransport

// ErrBodyTooLarge is wrapped by the *Error returned for a response body over
// the transport's limit.
var ErrBodyTooLarge = errors.ErrBodyTooLarge

// Request is one call to the remote API. Path is relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	// Anonymous requests carry no bearer credential and are never recovered
	// by a refresh, e.g. /auth/login where a 401 means a wrong password.
	Anonymous bool
}

// Clone returns a deep copy so a retry can never alias the caller's request.
func (r Request) Clone() Request {
	c := r
	if r.Query != nil {
		c.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return c
}

// Response is whatever the server answered, any status included.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Transport sends a Request. It returns an error only when no HTTP response
// was obtained; every HTTP status, 401 and 500 included, is a Response.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Error is a transport-level failure.
type Error struct {
	Method string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
