package snapshot

import (
	"context"
	"errors"
	"time"
)

const (
	ProductsKey = "loja_produtos_v1"
	CartKey     = "loja_carrinho_v1"
	AdminKey    = "loja_admin_v1"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var (
	ErrNotFound    = errors.New("snapshot not found")
	ErrNotMigrated = errors.New("snapshot table missing, run migrations")
)

// KV is a durable string-keyed blob store. Every Put replaces the whole
// value stored under the key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
