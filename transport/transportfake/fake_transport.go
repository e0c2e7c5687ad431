package transportfake

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

var _ transport.Transport = (*FakeTransport)(nil)

// HandlerFunc answers one request.
type HandlerFunc func(ctx context.Context, req transport.Request) (*transport.Response, error)

// FakeTransport records every request and answers with a HandlerFunc.
type FakeTransport struct {
	handler HandlerFunc
	calls   []transport.Request
	lock    sync.Mutex
}

func NewFakeTransport(handler HandlerFunc) *FakeTransport {
	return &FakeTransport{handler: handler}
}

func (ft *FakeTransport) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	ft.lock.Lock()
	ft.calls = append(ft.calls, req.Clone())
	ft.lock.Unlock()

	return ft.handler(ctx, req)
}

// Calls returns copies of all requests seen so far, in order.
func (ft *FakeTransport) Calls() []transport.Request {
	ft.lock.Lock()
	defer ft.lock.Unlock()

	calls := make([]transport.Request, len(ft.calls))
	copy(calls, ft.calls)
	return calls
}

// CallsTo returns the requests sent to path.
func (ft *FakeTransport) CallsTo(path string) []transport.Request {
	var out []transport.Request
	for _, c := range ft.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// JSON builds a response with v encoded as the body.
func JSON(status int, v any) *transport.Response {
	body, _ := json.Marshal(v)
	return &transport.Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}

// Status builds a response with an API-style {"detail": ...} body.
func Status(status int) *transport.Response {
	return JSON(status, map[string]string{"detail": http.StatusText(status)})
}
