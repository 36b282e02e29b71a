package shop

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"Storefront/internal/snapshot"
)

// loadSnapshot reads one aggregate. The bool result reports that the fallback
// was installed and has to be written back. A snapshot that decodes but fails
// check counts as malformed.
func loadSnapshot[T any](ctx context.Context, s *Store, key string, fallback func() T, check func(T) error) (T, bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		s.log.Info("snapshot absent, using default", zap.String("key", key))
		return fallback(), true, nil
	}

	var v T
	err = json.Unmarshal(raw, &v)
	if err == nil && check != nil {
		err = check(v)
	}
	if err != nil {
		s.log.Warn("malformed snapshot replaced with default",
			zap.String("key", key),
			zap.Error(err),
		)
		return fallback(), true, nil
	}
	return v, false, nil
}

func (s *Store) saveProducts(ctx context.Context) {
	s.save(ctx, snapshot.ProductsKey, s.products)
}

func (s *Store) saveCart(ctx context.Context) {
	s.save(ctx, snapshot.CartKey, s.cart)
}

func (s *Store) saveAdmin(ctx context.Context) {
	s.save(ctx, snapshot.AdminKey, s.admin)
}

// save is fire-and-forget: a rejected write is logged and the in-memory
// state stays authoritative until the next successful write.
func (s *Store) save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("snapshot encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, key, b); err != nil {
		s.log.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
	}
}
