package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/session"
)

var ErrSessionValidation = errors.ErrSessionValidation

// ProfileFetcher loads the profile of whoever the current credentials belong to.
type ProfileFetcher interface {
	Me(ctx context.Context) (*session.User, error)
}

// SessionStore is the part of session.Store the bootstrapper needs.
type SessionStore interface {
	State() session.State
	Subscribe(l session.Listener) func()
	SetUser(u *session.User)
	MarkInitialized()
	Logout()
}

// Bootstrapper decides whether a restored session can be trusted before
// anything protected is shown.
type Bootstrapper struct {
	store    SessionStore
	profiles ProfileFetcher
	timeout  time.Duration
	logger   zerolog.Logger
}

// New creates a Bootstrapper. timeout bounds the profile fetch; zero means
// it is bounded only by the caller's context.
func New(store SessionStore, profiles ProfileFetcher, timeout time.Duration) *Bootstrapper {
	return &Bootstrapper{
		store:    store,
		profiles: profiles,
		timeout:  timeout,
		logger:   log.With().Str("component", "bootstrap").Logger(),
	}
}

// Run validates the current session once. ctx is the cancellation token:
// once it is done no further state change is made, even if the profile
// fetch completes afterwards.
//
// A failed validation drops the session and returns an error wrapping
// ErrSessionValidation. A discarded outcome returns ctx.Err().
func (b *Bootstrapper) Run(ctx context.Context) error {
	return b.run(ctx, &cancelGuard{ctx: ctx})
}

func (b *Bootstrapper) run(ctx context.Context, g *cancelGuard) error {
	st := b.store.State()
	if st.Credentials == nil {
		b.logger.Debug().Msg("no session to validate")
		if !g.do(b.store.MarkInitialized) {
			return ctx.Err()
		}
		return nil
	}
	if st.Initialized && st.User != nil {
		b.logger.Debug().Int64("user_id", st.User.ID).Msg("session already validated")
		return nil
	}

	fetchCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	user, err := b.profiles.Me(fetchCtx)
	if err == nil && (user == nil || user.ID == 0) {
		err = fmt.Errorf("%w: empty profile", errors.ErrInvalidResponse)
	}
	if err != nil {
		applied := g.do(func() {
			b.store.Logout()
			b.store.MarkInitialized()
		})
		if !applied {
			b.logger.Debug().Err(err).Msg("validation cancelled, failure discarded")
			return g.err()
		}
		b.logger.Warn().Err(err).Msg("restored session rejected, logged out")
		return fmt.Errorf("%w: %w", ErrSessionValidation, err)
	}

	applied := g.do(func() {
		b.store.SetUser(user)
		b.store.MarkInitialized()
	})
	if !applied {
		b.logger.Debug().Int64("user_id", user.ID).Msg("validation cancelled, profile discarded")
		return g.err()
	}
	b.logger.Info().Int64("user_id", user.ID).Msg("session validated")
	return nil
}

// Watch runs the validation now and again whenever the credentials or the
// initialized flag change, cancelling the run that is still in flight for
// the previous values. It returns when ctx is done.
func (b *Bootstrapper) Watch(ctx context.Context) {
	changes := make(chan struct{}, 1)
	unsubscribe := b.store.Subscribe(func(session.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var (
		current     *run
		lastCreds   *session.Credentials
		lastInit    bool
		initialized bool
	)
	defer func() {
		if current != nil {
			current.stop()
		}
	}()

	for {
		st := b.store.State()
		if !initialized || st.Credentials != lastCreds || st.Initialized != lastInit {
			initialized = true
			lastCreds, lastInit = st.Credentials, st.Initialized
			if current != nil {
				current.stop()
			}
			current = b.start(ctx)
		}

		select {
		case <-ctx.Done():
			return
		case <-changes:
		}
	}
}

// Wait blocks until the session is initialized and returns that state.
func (b *Bootstrapper) Wait(ctx context.Context) (session.State, error) {
	ready := make(chan struct{}, 1)
	unsubscribe := b.store.Subscribe(func(st session.State) {
		if !st.Initialized {
			return
		}
		select {
		case ready <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if st := b.store.State(); st.Initialized {
		return st, nil
	}
	select {
	case <-ready:
		return b.store.State(), nil
	case <-ctx.Done():
		return b.store.State(), ctx.Err()
	}
}

type run struct {
	guard  *cancelGuard
	cancel context.CancelFunc
}

func (b *Bootstrapper) start(parent context.Context) *run {
	ctx, cancel := context.WithCancel(parent)
	g := &cancelGuard{ctx: ctx}
	go func() {
		if err := b.run(ctx, g); err != nil {
			b.logger.Debug().Err(err).Msg("bootstrap run finished with error")
		}
	}()
	return &run{guard: g, cancel: cancel}
}

// stop returns only once the run can no longer touch the store.
func (r *run) stop() {
	r.guard.cancel()
	r.cancel()
}

// cancelGuard makes "check cancellation, then mutate" atomic with respect
// to cancel.
type cancelGuard struct {
	mu        sync.Mutex
	ctx       context.Context
	cancelled bool
}

func (g *cancelGuard) do(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelled || g.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

func (g *cancelGuard) cancel() {
	g.mu.Lock()
	g.cancelled = true
	g.mu.Unlock()
}

func (g *cancelGuard) err() error {
	if err := g.ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}
