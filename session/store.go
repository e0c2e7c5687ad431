package session

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Listener receives the new state after every change.
type Listener func(State)

// Store is the single source of truth for the session. It can only be
// changed through SetSession, SetUser, MarkInitialized and Logout, or their
// conditional forms RotateSession and EndSession.
//
// Mutations are applied under a lock and listeners are called afterwards in
// the mutating goroutine, so a listener may itself call back into the Store.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []subscription
	nextID    int
	logger    zerolog.Logger
}

// subscription slices are copied on removal, never edited in place, so a
// notify loop can keep ranging over the slice it read under the lock.
type subscription struct {
	id int
	l  Listener
}

func NewStore() *Store {
	return &Store{
		logger: log.With().Str("component", "session").Logger(),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, l: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// SetSession replaces the credentials. It leaves user and initialized alone,
// except that a nil pair also clears the user: there is never a user
// without credentials.
func (s *Store) SetSession(c *Credentials) {
	s.update(func(st State) (State, bool) {
		if c == nil {
			if st.Credentials == nil && st.User == nil {
				return st, false
			}
			st.Credentials = nil
			st.User = nil
			return st, true
		}
		cp := *c
		st.Credentials = &cp
		return st, true
	})
}

// SetUser replaces the user profile. A non-nil user is ignored while there
// are no credentials.
func (s *Store) SetUser(u *User) {
	s.update(func(st State) (State, bool) {
		if u == nil {
			if st.User == nil {
				return st, false
			}
			st.User = nil
			return st, true
		}
		if st.Credentials == nil {
			s.logger.Warn().Int64("user_id", u.ID).Msg("ignoring user without credentials")
			return st, false
		}
		cp := *u
		st.User = &cp
		return st, true
	})
}

// MarkInitialized flips initialized to true. Calling it again is a no-op.
func (s *Store) MarkInitialized() {
	s.update(func(st State) (State, bool) {
		if st.Initialized {
			return st, false
		}
		st.Initialized = true
		return st, true
	})
}

// Logout drops credentials and user together and marks the session as
// initialized: after a logout the answer to "who is this?" is known.
func (s *Store) Logout() {
	s.update(func(st State) (State, bool) {
		if st.Credentials == nil && st.User == nil && st.Initialized {
			return st, false
		}
		return State{Initialized: true}, true
	})
}

// RotateSession replaces the credentials only while the session still
// holds refreshToken. It reports whether it did.
func (s *Store) RotateSession(refreshToken string, c *Credentials) bool {
	if c == nil {
		return false
	}
	rotated := false
	s.update(func(st State) (State, bool) {
		if st.Credentials == nil || st.Credentials.RefreshToken != refreshToken {
			return st, false
		}
		cp := *c
		st.Credentials = &cp
		rotated = true
		return st, true
	})
	return rotated
}

// EndSession logs out only while the session still holds refreshToken, so a
// failure that belongs to an older session can't end a newer one. It reports
// whether the session is now logged out.
func (s *Store) EndSession(refreshToken string) bool {
	ended := false
	s.update(func(st State) (State, bool) {
		if st.RefreshToken() != refreshToken {
			return st, false
		}
		ended = true
		if st.Credentials == nil && st.User == nil && st.Initialized {
			return st, false
		}
		return State{Initialized: true}, true
	})
	return ended
}

func (s *Store) update(fn func(State) (State, bool)) {
	s.mu.Lock()
	next, changed := fn(s.state)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.l(next)
	}
}

// TokenSource exposes the current credentials as an oauth2.TokenSource.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	st := ts.store.State()
	if st.AccessToken() == "" {
		return nil, ErrNoSession
	}
	return st.Credentials.Token(), nil
}
