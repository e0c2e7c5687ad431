package api

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/transport"
)

const minPasswordLength = 8

// Auth covers login, registration and the current profile.
type Auth struct {
	sender Sender
	store  SessionWriter
}

// Login exchanges email and password for credentials, stores them, and
// loads the profile. The session is initialized afterwards either way.
func (a *Auth) Login(ctx context.Context, p LoginPayload) (*session.User, error) {
	if err := validateCredentials(p.Email, p.Password); err != nil {
		return nil, err
	}

	var creds session.Credentials
	req := transport.Request{Method: http.MethodPost, Path: RouteAuthLogin, Anonymous: true}
	if err := call(ctx, a.sender, req, p, &creds); err != nil {
		return nil, err
	}
	return a.establish(ctx, &creds)
}

// Register creates an account and logs straight into it.
func (a *Auth) Register(ctx context.Context, p RegisterPayload) (*session.User, error) {
	if err := validateCredentials(p.Email, p.Password); err != nil {
		return nil, err
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}

	var creds session.Credentials
	req := transport.Request{Method: http.MethodPost, Path: RouteAuthRegister, Anonymous: true}
	if err := call(ctx, a.sender, req, p, &creds); err != nil {
		return nil, err
	}
	return a.establish(ctx, &creds)
}

// Me fetches the profile the current credentials belong to. A reply
// without an id and email is not a profile and fails with
// ErrInvalidResponse.
func (a *Auth) Me(ctx context.Context) (*session.User, error) {
	var user session.User
	req := transport.Request{Method: http.MethodGet, Path: RouteAuthMe}
	if err := call(ctx, a.sender, req, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 || user.Email == "" {
		return nil, fmt.Errorf("%s %s: %w: profile has no id or email", req.Method, req.Path, ErrInvalidResponse)
	}
	return &user, nil
}

// Logout forgets the session locally; the API keeps no server-side session.
func (a *Auth) Logout() {
	a.store.Logout()
}

// establish installs freshly issued credentials and validates them with a
// profile fetch. Credentials whose profile can't be loaded are dropped.
func (a *Auth) establish(ctx context.Context, creds *session.Credentials) (*session.User, error) {
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: server issued an empty access token", ErrInvalidResponse)
	}
	a.store.SetSession(creds)

	user, err := a.Me(ctx)
	if err != nil {
		a.store.Logout()
		return nil, err
	}
	a.store.SetUser(user)
	a.store.MarkInitialized()
	return user, nil
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email %q is not valid", email)
	}
	if len(password) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	return nil
}
