package storage

import (
	"context"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
)

// ErrNotFound is returned by Get when the key has never been set or was deleted.
var ErrNotFound = errors.ErrNotFound

// KV is the durable byte store the persisted session lives in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
