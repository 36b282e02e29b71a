package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, kv.Ping(ctx))

	_, found, err := kv.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Put(ctx, CartKey, []byte(`[]`)))
	require.NoError(t, kv.Put(ctx, CartKey, []byte(`[{"id":"l1"}]`)))

	got, found, err := kv.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"l1"}]`, string(got))

	_, found, err = kv.Get(ctx, AdminKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemKV(t *testing.T) {
	exerciseKV(t, NewMemKV())
}

func TestMemKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemKV()

	v := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", v))
	v[0] = 'x'

	got, _, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestFileKV_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Put(context.Background(), ProductsKey, []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ProductsKey+".json", entries[0].Name())
}

func TestFileKV_RejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	err = kv.Put(context.Background(), "../escape", []byte(`{}`))
	assert.Error(t, err)
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	prefix := "storefront-test:" + t.Name() + ":"
	ctx := context.Background()
	require.NoError(t, client.Del(ctx, prefix+CartKey, prefix+AdminKey).Err())

	exerciseKV(t, NewRedisKV(client, prefix))
}

func TestPostgresKV(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, dsn))

	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `TRUNCATE snapshots`)
	require.NoError(t, err)

	exerciseKV(t, NewPostgresKV(db))
}
