package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-timesheets-client/storage"
)

var _ storage.KV = (*InMemoryKV)(nil)

// InMemoryKV is an in-memory implementation of storage.KV. Values are
// copied on the way in and out.
type InMemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty in-memory store.
func New() *InMemoryKV {
	return &InMemoryKV{
		values: make(map[string][]byte),
	}
}

// Get retrieves the value stored under key
func (kv *InMemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set creates or replaces the value stored under key
func (kv *InMemoryKV) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (kv *InMemoryKV) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	delete(kv.values, key)
	return nil
}
