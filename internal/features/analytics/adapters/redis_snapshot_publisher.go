package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"shipone/internal/core/cache"
	"shipone/internal/features/analytics/domain"
)

// SnapshotCacheKey is the cache key the snapshot is published under.
const SnapshotCacheKey = "analytics_snapshot"

// RedisSnapshotPublisher implements ports.SnapshotPublisher on the cache
// port. The snapshot is stored as a single JSON value with no expiration,
// overwritten on every publish.
type RedisSnapshotPublisher struct {
	cache cache.Cache
}

// NewRedisSnapshotPublisher creates a new RedisSnapshotPublisher.
func NewRedisSnapshotPublisher(c cache.Cache) *RedisSnapshotPublisher {
	return &RedisSnapshotPublisher{cache: c}
}

// Publish stores the snapshot in the cache.
func (r *RedisSnapshotPublisher) Publish(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.cache.Set(ctx, SnapshotCacheKey, data, 0); err != nil {
		return fmt.Errorf("failed to publish snapshot to cache: %w", err)
	}
	return nil
}
