package bootstrap_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-timesheets-client/api"
	"github.com/jrsteele09/go-timesheets-client/bootstrap"
	"github.com/jrsteele09/go-timesheets-client/client"
	"github.com/jrsteele09/go-timesheets-client/guard"
	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/refresh"
	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/transport"
	"github.com/jrsteele09/go-timesheets-client/transport/transportfake"
)

// fakeProfiles answers Me with fn and counts calls.
type fakeProfiles struct {
	calls atomic.Int32
	fn    func(ctx context.Context) (*session.User, error)
}

func (f *fakeProfiles) Me(ctx context.Context) (*session.User, error) {
	f.calls.Add(1)
	return f.fn(ctx)
}

func restored(access string) *session.Store {
	s := session.NewStore()
	s.SetSession(&session.Credentials{AccessToken: access, RefreshToken: "r1", TokenType: "bearer"})
	return s
}

func TestRun_NoCredentials(t *testing.T) {
	store := session.NewStore()
	profiles := &fakeProfiles{fn: func(context.Context) (*session.User, error) {
		return &session.User{ID: 1}, nil
	}}

	err := bootstrap.New(store, profiles, 0).Run(context.Background())

	require.NoError(t, err)
	require.Zero(t, profiles.calls.Load())
	require.True(t, store.State().Initialized)
	require.Equal(t, guard.RedirectToLogin, guard.Decide(store.State(), "/").Kind)
}

func TestRun_ValidSession(t *testing.T) {
	store := restored("a1")
	require.Equal(t, guard.Loading, guard.Decide(store.State(), "/").Kind)

	profiles := &fakeProfiles{fn: func(context.Context) (*session.User, error) {
		return &session.User{ID: 1, Email: "john.doe@example.com"}, nil
	}}

	err := bootstrap.New(store, profiles, time.Second).Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, int32(1), profiles.calls.Load())
	st := store.State()
	require.Equal(t, int64(1), st.User.ID)
	require.Equal(t, "a1", st.AccessToken())
	require.True(t, st.Initialized)
	require.Equal(t, guard.Render, guard.Decide(st, "/").Kind)
}

func TestRun_RejectedSession(t *testing.T) {
	for name, fn := range map[string]func(context.Context) (*session.User, error){
		"error":    func(context.Context) (*session.User, error) { return nil, errors.ErrUnauthorized },
		"no user":  func(context.Context) (*session.User, error) { return nil, nil },
		"zero id":  func(context.Context) (*session.User, error) { return &session.User{}, nil },
		"deadline": func(ctx context.Context) (*session.User, error) { <-ctx.Done(); return nil, ctx.Err() },
	} {
		t.Run(name, func(t *testing.T) {
			store := restored("a1")
			profiles := &fakeProfiles{fn: fn}

			err := bootstrap.New(store, profiles, 10*time.Millisecond).Run(context.Background())

			require.True(t, errors.Is(err, bootstrap.ErrSessionValidation))
			st := store.State()
			require.Nil(t, st.Credentials)
			require.Nil(t, st.User)
			require.True(t, st.Initialized)
		})
	}
}

func TestRun_BlankProfileFromAPI(t *testing.T) {
	for name, resp := range map[string]*transport.Response{
		"empty body":   {Status: http.StatusOK},
		"empty object": {Status: http.StatusOK, Body: []byte(`{}`)},
	} {
		t.Run(name, func(t *testing.T) {
			store := restored("a1")
			ft := transportfake.NewFakeTransport(func(ctx context.Context, req transport.Request) (*transport.Response, error) {
				return resp, nil
			})
			c := client.New(ft, store, refresh.NewCoordinator(store, ft, time.Second))
			auth := api.New(c, store).Auth

			err := bootstrap.New(store, auth, time.Second).Run(context.Background())

			require.True(t, errors.Is(err, bootstrap.ErrSessionValidation))
			require.True(t, errors.Is(err, api.ErrInvalidResponse))
			st := store.State()
			require.Nil(t, st.Credentials)
			require.Nil(t, st.User)
			require.True(t, st.Initialized)
			require.Equal(t, guard.RedirectToLogin, guard.Decide(st, "/").Kind)
		})
	}
}

func TestRun_AlreadyValidated(t *testing.T) {
	store := restored("a1")
	store.SetUser(&session.User{ID: 1})
	store.MarkInitialized()
	profiles := &fakeProfiles{fn: func(context.Context) (*session.User, error) {
		t.Fatal("no profile fetch expected")
		return nil, nil
	}}

	require.NoError(t, bootstrap.New(store, profiles, 0).Run(context.Background()))
	require.Zero(t, profiles.calls.Load())
}

func TestRun_CancelledResultDiscarded(t *testing.T) {
	store := restored("a1")
	started := make(chan struct{})
	release := make(chan struct{})
	profiles := &fakeProfiles{fn: func(context.Context) (*session.User, error) {
		close(started)
		<-release
		return &session.User{ID: 1}, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- bootstrap.New(store, profiles, 0).Run(ctx) }()

	<-started
	cancel()
	close(release)

	require.ErrorIs(t, <-errCh, context.Canceled)
	st := store.State()
	require.Nil(t, st.User)
	require.False(t, st.Initialized)
	require.Equal(t, "a1", st.AccessToken())
}

func TestRun_CancelledFailureDiscarded(t *testing.T) {
	store := restored("a1")
	ctx, cancel := context.WithCancel(context.Background())
	profiles := &fakeProfiles{fn: func(context.Context) (*session.User, error) {
		cancel()
		return nil, errors.ErrUnauthorized
	}}

	err := bootstrap.New(store, profiles, 0).Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "a1", store.State().AccessToken())
	require.False(t, store.State().Initialized)
}

func TestWatch_LoginDuringValidation(t *testing.T) {
	store := restored("a1")

	var mu sync.Mutex
	releases := map[string]chan struct{}{}
	started := make(chan string, 4)
	profiles := &fakeProfiles{fn: func(ctx context.Context) (*session.User, error) {
		token := store.State().AccessToken()
		mu.Lock()
		release, ok := releases[token]
		if !ok {
			release = make(chan struct{})
			releases[token] = release
		}
		mu.Unlock()
		started <- token
		<-release
		if token == "a1" {
			return &session.User{ID: 1}, nil
		}
		return &session.User{ID: 2}, nil
	}}
	b := bootstrap.New(store, profiles, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		b.Watch(ctx)
	}()

	require.Equal(t, "a1", <-started)

	// A fresh login replaces the restored credentials while their
	// validation is still outstanding.
	store.SetSession(&session.Credentials{AccessToken: "b1", RefreshToken: "r2", TokenType: "bearer"})
	require.Equal(t, "b1", <-started)

	mu.Lock()
	close(releases["a1"])
	mu.Unlock()

	// The stale validation must not land.
	time.Sleep(20 * time.Millisecond)
	require.Nil(t, store.State().User)
	require.False(t, store.State().Initialized)

	mu.Lock()
	close(releases["b1"])
	mu.Unlock()

	st, err := b.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "b1", st.AccessToken())
	require.Eventually(t, func() bool {
		u := store.State().User
		return u != nil && u.ID == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-watchDone
}

func TestWatch_LogoutMarksInitialized(t *testing.T) {
	store := restored("a1")
	store.SetUser(&session.User{ID: 1})
	store.MarkInitialized()
	b := bootstrap.New(store, &fakeProfiles{fn: func(context.Context) (*session.User, error) {
		return &session.User{ID: 1}, nil
	}}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Watch(ctx)

	store.Logout()

	require.Eventually(t, func() bool {
		return guard.Decide(store.State(), "/").Kind == guard.RedirectToLogin
	}, time.Second, 5*time.Millisecond)
}

func TestWait(t *testing.T) {
	t.Run("returns once initialized", func(t *testing.T) {
		store := restored("a1")
		b := bootstrap.New(store, &fakeProfiles{fn: func(context.Context) (*session.User, error) {
			return &session.User{ID: 5}, nil
		}}, 0)

		go func() {
			time.Sleep(10 * time.Millisecond)
			_ = b.Run(context.Background())
		}()

		st, err := b.Wait(context.Background())
		require.NoError(t, err)
		require.True(t, st.Initialized)
	})

	t.Run("gives up with the context", func(t *testing.T) {
		store := restored("a1")
		b := bootstrap.New(store, &fakeProfiles{}, 0)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		st, err := b.Wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.False(t, st.Initialized)
	})
}
