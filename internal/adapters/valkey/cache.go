package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
)

// Store adapts a Valkey (Redis-compatible) server to geocache.Store.
// Writes use SET NX, so the first writer holds the key until expiry and
// a losing writer sees a conflict.
type Store struct {
	client valkey.Client
}

// New connects to a Valkey server.
func New(addr string) (*Store, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Store{client: client}, nil
}

// Get retrieves a payload by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	b, err := resp.AsBytes()
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Put stores a payload with a TTL in seconds.
func (s *Store) Put(ctx context.Context, key string, payload []byte, ttlSeconds int) error {
	resp := s.client.Do(ctx,
		s.client.B().Set().Key(key).Value(string(payload)).
			Nx().Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	)
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return geocache.ErrConflict
		}
		return err
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() {
	s.client.Close()
}

var _ geocache.Store = (*Store)(nil)
