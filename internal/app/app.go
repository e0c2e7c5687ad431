package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-timesheets-client/api"
	"github.com/jrsteele09/go-timesheets-client/bootstrap"
	"github.com/jrsteele09/go-timesheets-client/client"
	"github.com/jrsteele09/go-timesheets-client/internal/config"
	"github.com/jrsteele09/go-timesheets-client/refresh"
	"github.com/jrsteele09/go-timesheets-client/session"
	"github.com/jrsteele09/go-timesheets-client/storage"
	"github.com/jrsteele09/go-timesheets-client/storage/filestore"
	"github.com/jrsteele09/go-timesheets-client/storage/memstore"
	"github.com/jrsteele09/go-timesheets-client/storage/redisstore"
	"github.com/jrsteele09/go-timesheets-client/transport"
)

// App holds the wired session subsystem.
type App struct {
	Config       config.Config
	Store        *session.Store
	Persister    *session.Persister
	Coordinator  *refresh.Coordinator
	Client       *client.Client
	API          *api.API
	Bootstrapper *bootstrap.Bootstrapper

	closers []io.Closer
	detach  func()
}

// New builds the subsystem on top of the given transport and KV.
func New(cfg config.Config, t transport.Transport, kv storage.KV) *App {
	store := session.NewStore()
	coordinator := refresh.NewCoordinator(store, t, cfg.GetRefreshTimeout())
	c := client.New(t, store, coordinator)
	a := api.New(c, store)

	return &App{
		Config:       cfg,
		Store:        store,
		Persister:    session.NewPersister(store, kv, cfg.GetSessionKey()),
		Coordinator:  coordinator,
		Client:       c,
		API:          a,
		Bootstrapper: bootstrap.New(store, a.Auth, cfg.GetBootstrapTimeout()),
	}
}

// FromConfig picks the KV backend and HTTP transport named by cfg.
func FromConfig(ctx context.Context, cfg config.Config) (*App, error) {
	var (
		kv      storage.KV
		closers []io.Closer
	)
	switch backend := cfg.GetSessionBackend(); backend {
	case config.BackendFile:
		fs, err := filestore.New(cfg.GetSessionDir())
		if err != nil {
			return nil, fmt.Errorf("[app FromConfig] %w", err)
		}
		kv = fs
	case config.BackendRedis:
		rc, err := redisstore.Connect(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, fmt.Errorf("[app FromConfig] %w", err)
		}
		kv = redisstore.NewRedisKV(rc, "timesheets:")
		closers = append(closers, rc)
	case config.BackendMemory:
		kv = memstore.New()
	default:
		return nil, fmt.Errorf("[app FromConfig] unknown session backend %q", backend)
	}

	t := transport.NewHTTPTransport(cfg.GetBaseURL(), cfg.GetRequestTimeout())
	a := New(cfg, t, kv)
	a.closers = closers
	log.Debug().Str("backend", cfg.GetSessionBackend()).Str("api", cfg.GetBaseURL()).Msg("app configured")
	return a, nil
}

// Start restores the persisted session, begins persisting changes, and runs
// the bootstrapper in the background until ctx ends.
func (a *App) Start(ctx context.Context) {
	a.Persister.Restore(ctx)
	a.detach = a.Persister.Attach()
	go a.Bootstrapper.Watch(ctx)
}

func (a *App) Close() error {
	if a.detach != nil {
		a.detach()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}
