package ports

import (
	"context"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

// GeoCache is a keyed, TTL-bounded store of opaque JSON payloads shared by
// every external-data fetch. Caching is best effort: a miss must always be
// safe to recompute, and a failed write never fails the caller.
type GeoCache interface {
	// Get returns the cached payload for key, or found=false on a miss
	// or expired entry.
	Get(ctx context.Context, key string, out any) (found bool, err error)

	// Put stores a payload with a TTL in seconds. Lost-update races are
	// resolved inside the implementation (retry once, then drop).
	Put(ctx context.Context, key string, value any, ttlSeconds int) error
}

// EventPublisher publishes completed assessments to a message broker.
// Publishing is best effort and never fails the pipeline.
type EventPublisher interface {
	PublishAssessmentCompleted(ctx context.Context, result *domain.AssessmentResult) error
}
