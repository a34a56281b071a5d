package ports

import (
	"context"

	"shipone/internal/features/analytics/domain"
)

// SnapshotPublisher receives the analytics snapshot after every change, so
// out-of-process consumers (dashboards, read replicas) can serve it without
// touching the shipment store. The published copy is never read back as
// authoritative state: a boot always rebuilds the snapshot from the store.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snapshot domain.Snapshot) error
}
