package settings

import (
	"context"
	"fmt"
	"time"
)

// Meta is storage-owned metadata attached to each saved value, used for
// audit trails and debugging which snapshot a resolver observed.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Store loads and saves one configuration value per key.
type Store interface {
	Get(ctx context.Context, key string) (value any, meta Meta, ok bool, err error)
	Set(ctx context.Context, key string, value any, meta Meta) (Meta, error)
}

// ResolverFor adapts store into the default option-getter shape consumed by
// the poststates registry: given a key, return the currently stored value.
// A missing key resolves to nil with no error.
func ResolverFor(store Store) func(key string) (any, error) {
	return func(key string) (any, error) {
		if store == nil {
			return nil, fmt.Errorf("settings: store is required")
		}
		value, _, ok, err := store.Get(context.Background(), key)
		if err != nil {
			return nil, fmt.Errorf("settings: get %q: %w", key, err)
		}
		if !ok {
			return nil, nil
		}
		return value, nil
	}
}

// Chain consults stores in order on Get, returning the first hit. Set writes
// to the first store only; weaker stores act as read-only fallbacks.
func Chain(stores ...Store) Store {
	filtered := make([]Store, 0, len(stores))
	for _, store := range stores {
		if store != nil {
			filtered = append(filtered, store)
		}
	}
	return chainStore{stores: filtered}
}

type chainStore struct {
	stores []Store
}

func (c chainStore) Get(ctx context.Context, key string) (any, Meta, bool, error) {
	for _, store := range c.stores {
		value, meta, ok, err := store.Get(ctx, key)
		if err != nil {
			return nil, Meta{}, false, err
		}
		if ok {
			return value, meta, true, nil
		}
	}
	return nil, Meta{}, false, nil
}

func (c chainStore) Set(ctx context.Context, key string, value any, meta Meta) (Meta, error) {
	if len(c.stores) == 0 {
		return Meta{}, fmt.Errorf("settings: chain has no stores")
	}
	return c.stores[0].Set(ctx, key, value, meta)
}
