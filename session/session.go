package session

import (
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
)

// ErrNoSession is returned by the token source when nobody is logged in.
var ErrNoSession = errors.Wrapf(errors.ErrUnauthorized, "no active session")

// Credentials is the access/refresh pair issued by /auth/login, /auth/register
// and /auth/refresh. Both tokens are opaque; nothing here looks inside them.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Token converts the pair to an oauth2.Token. The API never reports an
// expiry, so Expiry stays zero and the token is treated as valid until the
// server says otherwise with a 401.
func (c *Credentials) Token() *oauth2.Token {
	if c == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
	}
}

// AuthorizationHeader renders the value for the Authorization header,
// e.g. "Bearer a1". Empty when there is no access token.
func (c *Credentials) AuthorizationHeader() string {
	if c == nil || c.AccessToken == "" {
		return ""
	}
	tok := c.Token()
	return tok.Type() + " " + tok.AccessToken
}

// User is the profile returned by GET /auth/me. It is replaced wholesale,
// never merged.
type User struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name"`
	Timezone    string  `json:"timezone"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	CreatedAt   string  `json:"created_at"`
}

// State is an immutable snapshot of the session. Pointers in a snapshot are
// owned by the Store and must be treated as read-only.
type State struct {
	User        *User
	Credentials *Credentials
	Initialized bool
}

// AccessToken returns the current access token or "".
func (s State) AccessToken() string {
	if s.Credentials == nil {
		return ""
	}
	return s.Credentials.AccessToken
}

// RefreshToken returns the current refresh token or "".
func (s State) RefreshToken() string {
	if s.Credentials == nil {
		return ""
	}
	return s.Credentials.RefreshToken
}

// Authenticated reports whether credentials are present.
func (s State) Authenticated() bool {
	return s.Credentials != nil
}
