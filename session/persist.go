package session

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/storage"
)

// persistTimeout bounds a single write triggered by a state change.
const persistTimeout = 5 * time.Second

// persisted is the stored subset of State. Initialized is left out so a
// restored session is always validated again.
type persisted struct {
	Tokens *Credentials `json:"tokens"`
	User   *User        `json:"user"`
}

// Persister keeps {credentials, user} of a Store in a storage.KV under one
// fixed key.
type Persister struct {
	store  *Store
	kv     storage.KV
	key    string
	logger zerolog.Logger

	mu   sync.Mutex
	last []byte
}

func NewPersister(store *Store, kv storage.KV, key string) *Persister {
	return &Persister{
		store:  store,
		kv:     kv,
		key:    key,
		logger: log.With().Str("component", "persister").Str("key", key).Logger(),
	}
}

// Restore loads the persisted session into the Store. Missing or corrupt
// data leaves the Store empty; it is never reported as an error. Corrupt or
// credential-less data is deleted.
func (p *Persister) Restore(ctx context.Context) {
	data, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.Debug().Msg("no persisted session")
		return
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("persisted session unreadable, starting empty")
		return
	}

	var saved persisted
	if err := json.Unmarshal(data, &saved); err != nil {
		p.logger.Warn().Err(err).Msg("persisted session corrupt, starting empty")
		p.discard(ctx)
		return
	}
	if saved.Tokens == nil || saved.Tokens.AccessToken == "" {
		p.logger.Debug().Msg("persisted session has no credentials")
		p.discard(ctx)
		return
	}

	p.mu.Lock()
	p.last = data
	p.mu.Unlock()

	p.store.SetSession(saved.Tokens)
	if saved.User != nil {
		p.store.SetUser(saved.User)
	}
	p.logger.Debug().Bool("has_user", saved.User != nil).Msg("session restored")
}

// discard removes a stored value that can't be restored, so it doesn't
// outlive the empty session it produced.
func (p *Persister) discard(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.kv.Delete(ctx, p.key); err != nil {
		p.logger.Error().Err(err).Msg("failed to delete unusable persisted session")
	}
	p.last = nil
}

// Attach starts persisting every change of the Store. The returned function
// stops it.
func (p *Persister) Attach() func() {
	return p.store.Subscribe(func(State) {
		p.save()
	})
}

// save always writes the Store's latest state rather than the snapshot the
// listener was handed, so concurrent mutators can't persist out of order.
func (p *Persister) save() {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.store.State()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if st.Credentials == nil {
		if p.last == nil {
			return
		}
		if err := p.kv.Delete(ctx, p.key); err != nil {
			p.logger.Error().Err(err).Msg("failed to delete persisted session")
			return
		}
		p.last = nil
		return
	}

	data, err := json.Marshal(persisted{Tokens: st.Credentials, User: st.User})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode session")
		return
	}
	if bytes.Equal(data, p.last) {
		return
	}
	if err := p.kv.Set(ctx, p.key, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to persist session")
		return
	}
	p.last = data
}
