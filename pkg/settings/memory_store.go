package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests,
// examples, and hosts without persistent configuration. Every Set is stamped
// with a fresh snapshot ID unless the caller supplies one.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	value any
	meta  Meta
}

// NewMemoryStore constructs a store optionally seeded with initial values.
// Seeded entries receive generated snapshot IDs.
func NewMemoryStore(seed map[string]any) *MemoryStore {
	store := &MemoryStore{records: map[string]memoryRecord{}}
	for key, value := range seed {
		store.records[key] = memoryRecord{
			value: value,
			meta: Meta{
				SnapshotID: uuid.NewString(),
				UpdatedAt:  time.Now(),
			},
		}
	}
	return store
}

func (s *MemoryStore) Get(_ context.Context, key string) (any, Meta, bool, error) {
	if key == "" {
		return nil, Meta{}, false, fmt.Errorf("settings: key is required")
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return record.value, record.meta, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any, meta Meta) (Meta, error) {
	if key == "" {
		return Meta{}, fmt.Errorf("settings: key is required")
	}
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	if s.records == nil {
		s.records = map[string]memoryRecord{}
	}
	s.records[key] = memoryRecord{value: value, meta: meta}
	s.mu.Unlock()
	return meta, nil
}

// Delete removes key from the store. Unknown keys are a no-op.
func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}
