package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/transport"
)

const HeaderRequestID = "X-Request-ID"

var (
	ErrUnauthorized   = errors.ErrUnauthorized
	ErrSessionInvalid = errors.ErrSessionInvalid
)

// SessionStore is the part of session.Store the pipeline needs.
type SessionStore interface {
	State() session.State
	Logout()
}

// Refresher hands out an access token newer than stale.
type Refresher interface {
	Refresh(ctx context.Context, stale string) (string, error)
}

// Client is the authenticated request pipeline. It behaves like the
// transport it wraps, plus two things: it attaches the session's bearer
// credential, and it recovers from one 401 per request by refreshing the
// credential and sending the request again.
type Client struct {
	transport transport.Transport
	store     SessionStore
	refresher Refresher
	logger    zerolog.Logger
}

func New(t transport.Transport, store SessionStore, refresher Refresher) *Client {
	return &Client{
		transport: t,
		store:     store,
		refresher: refresher,
		logger:    log.With().Str("component", "client").Logger(),
	}
}

// attempt carries the per-request retry state alongside the request so the
// caller's Request is never written to.
type attempt struct {
	req       transport.Request
	requestID string
	auth      string
	retried   bool
}

// Send dispatches req. Any final status of 400 or above comes back as a
// *StatusError along with the response. A 401 that survives a refresh ends
// the session; so does a failed refresh, whose error is returned as is.
// Transport failures are returned unchanged and never retried.
func (c *Client) Send(ctx context.Context, req transport.Request) (*transport.Response, error) {
	a := attempt{
		req:       req,
		requestID: uuid.NewString(),
	}
	st := c.store.State()
	sentToken := st.AccessToken()
	if !req.Anonymous {
		a.auth = st.Credentials.AuthorizationHeader()
	}

	for {
		resp, err := c.dispatch(ctx, a)
		if err != nil {
			return nil, err
		}
		if resp.Status != http.StatusUnauthorized || req.Anonymous {
			return c.finish(a, resp)
		}

		if a.retried {
			c.logger.Warn().
				Str("request_id", a.requestID).
				Str("method", req.Method).
				Str("path", req.Path).
				Msg("unauthorized after refresh, dropping session")
			c.store.Logout()
			return resp, &StatusError{Method: req.Method, Path: req.Path, Response: resp, SessionInvalid: true}
		}

		c.logger.Info().
			Str("request_id", a.requestID).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("unauthorized, refreshing credentials")

		token, err := c.refresher.Refresh(ctx, sentToken)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
		a.retried = true
		a.auth = bearer(token, c.store.State())
	}
}

func (c *Client) dispatch(ctx context.Context, a attempt) (*transport.Response, error) {
	req := a.req.Clone()
	req.Header.Set(HeaderRequestID, a.requestID)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.auth != "" {
		req.Header.Set("Authorization", a.auth)
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("request_id", a.requestID).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("transport failure")
		return nil, err
	}

	c.logger.Debug().
		Str("request_id", a.requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.Status).
		Bool("retried", a.retried).
		Msg("dispatched")
	return resp, nil
}

func (c *Client) finish(a attempt, resp *transport.Response) (*transport.Response, error) {
	if resp.Status >= http.StatusBadRequest {
		return resp, &StatusError{Method: a.req.Method, Path: a.req.Path, Response: resp}
	}
	return resp, nil
}

// bearer renders the header for a freshly refreshed token, keeping the
// token type the server issued with it.
func bearer(token string, st session.State) string {
	creds := &session.Credentials{AccessToken: token}
	if st.Credentials != nil && st.Credentials.AccessToken == token {
		creds.TokenType = st.Credentials.TokenType
	}
	return creds.AuthorizationHeader()
}
