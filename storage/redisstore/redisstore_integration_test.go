package redisstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-timesheets-client/internal/errors"
	"github.com/jrsteele09/go-timesheets-client/storage"
	"github.com/jrsteele09/go-timesheets-client/storage/redisstore"
)

func TestRedisKV_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := redisstore.Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	kv := redisstore.NewRedisKV(client, "timesheets-test:"+uuid.NewString()+":")
	key := "dev-timesheets-auth"

	_, err = kv.Get(ctx, key)
	require.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, kv.Set(ctx, key, []byte(`{"tokens":null}`)))
	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `{"tokens":null}`, string(got))

	require.NoError(t, kv.Delete(ctx, key))
	_, err = kv.Get(ctx, key)
	require.True(t, errors.Is(err, storage.ErrNotFound))
}
