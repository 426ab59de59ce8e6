package geocache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store for tests and keyless
// deployments. Reads go through sync.Map and never wait on writers.
type MemoryStore struct {
	entries sync.Map // key -> memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	e := v.(memoryEntry)
	if s.now().After(e.expiresAt) {
		s.entries.Delete(key)
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, payload []byte, ttlSeconds int) error {
	if v, ok := s.entries.Load(key); ok {
		e := v.(memoryEntry)
		if s.now().Before(e.expiresAt) && !bytes.Equal(e.payload, payload) {
			// First writer wins for the lifetime of the entry.
			return ErrConflict
		}
	}
	s.entries.Store(key, memoryEntry{
		payload:   payload,
		expiresAt: s.now().Add(time.Duration(ttlSeconds) * time.Second),
	})
	return nil
}

var _ Store = (*MemoryStore)(nil)
