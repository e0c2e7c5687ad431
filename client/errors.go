package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-timesheets-client/transport"
)

// StatusError is a response with a status of 400 or above.
type StatusError struct {
	Method   string
	Path     string
	Response *transport.Response

	// SessionInvalid is set when the request was still unauthorized after a
	// successful refresh and the session was dropped.
	SessionInvalid bool
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Response.Status)
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

func (e *StatusError) Unwrap() []error {
	var errs []error
	if e.Response.Status == http.StatusUnauthorized {
		errs = append(errs, ErrUnauthorized)
	}
	if e.SessionInvalid {
		errs = append(errs, ErrSessionInvalid)
	}
	return errs
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Response.Status
}

// Detail extracts the "detail" message the API puts in error bodies. For
// validation errors it is a list; the first message is used.
func (e *StatusError) Detail() string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(e.Response.Body, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}
