package guard

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-timesheets-client/session"
)

// Kind is what a protected view should do for the current session.
type Kind int

const (
	// Loading: the session has not been validated yet.
	Loading Kind = iota
	// RedirectToLogin: there is no session.
	RedirectToLogin
	// Render: show the protected view.
	Render
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case RedirectToLogin:
		return "redirect"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decision is the outcome of Decide. From is the originally requested
// location, set for RedirectToLogin so a successful login can return there.
type Decision struct {
	Kind Kind
	From string
}

// Decide maps a session snapshot to a render decision. It has no side effects.
func Decide(st session.State, from string) Decision {
	switch {
	case !st.Initialized:
		return Decision{Kind: Loading}
	case st.Credentials == nil:
		return Decision{Kind: RedirectToLogin, From: from}
	default:
		return Decision{Kind: Render}
	}
}

// LoginLocation builds the login URL that carries the return location,
// e.g. "/auth/login?from=%2Freports".
func LoginLocation(loginPath, from string) string {
	if from == "" {
		return loginPath
	}
	return loginPath + "?" + url.Values{"from": []string{from}}.Encode()
}

// StateReader is anything that can hand out the current session snapshot.
type StateReader interface {
	State() session.State
}

// RequireSession is middleware for locally served pages that need a session.
// While the session is loading it answers 503 with Retry-After; without a
// session it redirects to loginPath, remembering the requested path.
func RequireSession(store StateReader, loginPath string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			d := Decide(store.State(), r.URL.RequestURI())
			switch d.Kind {
			case Loading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			case RedirectToLogin:
				http.Redirect(w, r, LoginLocation(loginPath, d.From), http.StatusSeeOther)
			default:
				next(w, r)
			}
		}
	}
}
