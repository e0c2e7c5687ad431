package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/transport"
)

var (
	ErrInvalidRequest  = errors.ErrInvalidRequest
	ErrInvalidResponse = errors.ErrInvalidResponse
)

// Sender is the authenticated request pipeline (client.Client).
type Sender interface {
	Send(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// SessionWriter is the part of session.Store that login and logout touch.
type SessionWriter interface {
	SetSession(c *session.Credentials)
	SetUser(u *session.User)
	MarkInitialized()
	Logout()
}

// API groups the remote API's endpoints. Every call goes through the
// same Sender.
type API struct {
	Auth         *Auth
	Projects     *Projects
	TimeEntries  *TimeEntries
	Reports      *Reports
	Reminders    *Reminders
	Integrations *Integrations
}

func New(sender Sender, store SessionWriter) *API {
	return &API{
		Auth:         &Auth{sender: sender, store: store},
		Projects:     &Projects{sender: sender},
		TimeEntries:  &TimeEntries{sender: sender},
		Reports:      &Reports{sender: sender},
		Reminders:    &Reminders{sender: sender},
		Integrations: &Integrations{sender: sender},
	}
}

// call sends in as JSON and decodes the response body into out. Either may
// be nil.
func call(ctx context.Context, s Sender, req transport.Request, in, out any) error {
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "%s %s: encode body", req.Method, req.Path)
		}
		req.Body = body
	}

	resp, err := s.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", req.Method, req.Path, ErrInvalidResponse, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func validateDateRange(from, to string) error {
	if from == "" || to == "" {
		return invalid("date_from and date_to are required")
	}
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return invalid("date_from %q is not YYYY-MM-DD", from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return invalid("date_to %q is not YYYY-MM-DD", to)
	}
	if f.After(t) {
		return invalid("date_from must be before date_to")
	}
	return nil
}

func projectQuery(ids []int64) url.Values {
	q := url.Values{}
	for _, id := range ids {
		q.Add("project_ids", fmt.Sprint(id))
	}
	return q
}
