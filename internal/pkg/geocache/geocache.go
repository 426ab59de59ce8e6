package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/metrics"
)

// ErrConflict is returned by Store.Put when a write loses a
// first-writer-wins race for the key.
var ErrConflict = errors.New("geocache: write conflict")

// Store is the backing store behind the cache front. Implementations
// must not block reads on in-flight writes.
type Store interface {
	// Get returns the payload for key, or found=false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)

	// Put stores payload under key with a TTL in seconds. A write that
	// loses a race for the key returns ErrConflict.
	Put(ctx context.Context, key string, payload []byte, ttlSeconds int) error
}

// Cache fronts a Store with JSON encoding, per-operation hit/miss
// metrics and the best-effort write policy: a conflicting write is
// retried once, then logged and dropped. A cache failure is never
// surfaced to the caller; every miss is safe to recompute.
type Cache struct {
	store Store
	log   *slog.Logger
}

// New creates a cache front over the given store.
func New(store Store, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{store: store, log: log}
}

// Get unmarshals the cached payload for key into out.
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	op := operationOf(key)

	payload, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false, nil
	}
	if !found {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		// Corrupt or outdated payload shape, treat as a miss.
		c.log.Warn("cache entry unreadable", "key", key, "error", err)
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false, nil
	}

	metrics.CacheHits.WithLabelValues(op).Inc()
	return true, nil
}

// Put marshals value and stores it under key.
func (c *Cache) Put(ctx context.Context, key string, value any, ttlSeconds int) error {
	op := operationOf(key)

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	err = c.store.Put(ctx, key, payload, ttlSeconds)
	if errors.Is(err, ErrConflict) {
		err = c.store.Put(ctx, key, payload, ttlSeconds)
	}
	switch {
	case errors.Is(err, ErrConflict):
		metrics.CacheWriteConflicts.WithLabelValues(op).Inc()
		c.log.Warn("cache write dropped after conflict", "key", key)
	case err != nil:
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}

// operationOf extracts the operation prefix of a cache key, the part
// before the first colon.
func operationOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
