package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/transport"
)

const (
	// RoutePath is the only endpoint this package talks to.
	RoutePath = "/auth/refresh"

	flightKey = "refresh"
)

var (
	ErrNoRefreshToken = errors.ErrNoRefreshToken
	ErrRefreshFailed  = errors.ErrRefreshFailed
	ErrSessionInvalid = errors.ErrSessionInvalid
)

// SessionStore is the part of session.Store the coordinator reads and writes.
type SessionStore interface {
	State() session.State
	RotateSession(refreshToken string, c *session.Credentials) bool
	EndSession(refreshToken string) bool
}

// Coordinator issues refresh calls, at most one at a time. Concurrent
// callers share the outcome of the attempt in flight, success or failure.
// The outcome is applied only to the session the refresh token came from:
// a session that was replaced meanwhile is neither rotated nor logged out.
type Coordinator struct {
	store     SessionStore
	transport transport.Transport
	timeout   time.Duration
	flights   singleflight.Group
	logger    zerolog.Logger
}

// NewCoordinator creates a coordinator. timeout bounds one refresh attempt;
// zero means no bound beyond the transport's own.
func NewCoordinator(store SessionStore, t transport.Transport, timeout time.Duration) *Coordinator {
	return &Coordinator{
		store:     store,
		transport: t,
		timeout:   timeout,
		logger:    log.With().Str("component", "refresh").Logger(),
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh returns an access token newer than stale, the token the caller's
// failed request was sent with.
//
// If the session already holds a different access token, a refresh settled
// after that request went out and its token is returned without a network
// call. Otherwise the caller joins the attempt in flight or starts one.
// Cancelling ctx only stops this caller from waiting; the attempt itself
// always runs to completion.
func (c *Coordinator) Refresh(ctx context.Context, stale string) (string, error) {
	if current := c.store.State().AccessToken(); current != "" && current != stale {
		c.logger.Debug().Msg("access token already rotated")
		return current, nil
	}

	attemptCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(flightKey, func() (interface{}, error) {
		return c.refresh(attemptCtx, stale)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug().Msg("joined in-flight refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) refresh(ctx context.Context, stale string) (string, error) {
	st := c.store.State()
	if current := st.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	refreshToken := st.RefreshToken()
	if refreshToken == "" {
		c.logger.Warn().Msg("refresh requested without a refresh token")
		c.store.EndSession("")
		return "", fmt.Errorf("%w: %w", ErrSessionInvalid, ErrNoRefreshToken)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Info().Msg("refreshing access token")
	creds, err := c.exchange(ctx, refreshToken)
	if err != nil {
		if c.store.EndSession(refreshToken) {
			c.logger.Warn().Err(err).Msg("refresh failed, logging out")
		} else {
			c.logger.Warn().Err(err).Msg("refresh failed for a session that was since replaced")
		}
		return "", fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	if !c.store.RotateSession(refreshToken, creds) {
		// Someone logged in or out while the refresh was running; their
		// session wins and the rotated pair is dropped.
		c.logger.Info().Msg("session replaced during refresh, discarding rotated credentials")
		if current := c.store.State().AccessToken(); current != "" {
			return current, nil
		}
		return "", fmt.Errorf("%w: %w", ErrSessionInvalid, ErrNoRefreshToken)
	}
	c.logger.Info().Msg("access token refreshed")
	return creds.AccessToken, nil
}

func (c *Coordinator) exchange(ctx context.Context, refreshToken string) (*session.Credentials, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrRefreshFailed, err)
	}

	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   RoutePath,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		Body:      body,
		Anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.Status)
	}

	var creds session.Credentials
	if err := json.Unmarshal(resp.Body, &creds); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrRefreshFailed, errors.ErrInvalidResponse, err)
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w: empty access token", ErrRefreshFailed, errors.ErrInvalidResponse)
	}
	return &creds, nil
}
