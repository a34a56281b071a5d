package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shipone/internal/core/logger"
	"shipone/internal/features/analytics/domain"
	"shipone/internal/features/analytics/ports"
	shipdomain "shipone/internal/features/shipments/domain"
	shipports "shipone/internal/features/shipments/ports"
)

// Aggregator maintains the analytics snapshot incrementally. It observes
// shipment creations and status transitions from the registry and keeps
// running counters, so dashboard reads never rescan the shipment
// population. At any quiescent point the counters equal what a full
// recompute over the store would produce.
type Aggregator struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot

	// publisher, when set, receives the snapshot after every change.
	// Publish failures are logged, never surfaced to the writer that
	// triggered them.
	publisher ports.SnapshotPublisher
}

// NewAggregator creates an empty Aggregator. publisher may be nil, in
// which case the snapshot lives only in memory.
func NewAggregator(publisher ports.SnapshotPublisher) *Aggregator {
	return &Aggregator{
		snapshot:  domain.NewSnapshot(),
		publisher: publisher,
	}
}

// ShipmentCreated implements ports.StatusObserver.
func (a *Aggregator) ShipmentCreated(shipment *shipdomain.Shipment) {
	a.mu.Lock()
	a.snapshot.AddShipment(shipment, shipment.Status)
	snap := a.snapshot.Clone()
	a.mu.Unlock()

	a.publish(snap)
}

// StatusChanged implements ports.StatusObserver.
func (a *Aggregator) StatusChanged(shipment *shipdomain.Shipment, previous, current shipdomain.Status) {
	if previous == current {
		return
	}

	a.mu.Lock()
	a.snapshot.ShiftStatus(previous, current)
	snap := a.snapshot.Clone()
	a.mu.Unlock()

	a.publish(snap)
}

// Read returns a copy of the current snapshot without recomputation.
func (a *Aggregator) Read() domain.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.Clone()
}

// Rebuild recomputes the snapshot from a full pass over the shipment store,
// deriving each shipment's status from its event log. Runs at startup and
// serves as the correctness oracle for the incremental counters.
func (a *Aggregator) Rebuild(ctx context.Context, store shipports.ShipmentStore) error {
	stored, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("aggregator: failed to scan shipments: %w", err)
	}

	fresh := domain.NewSnapshot()
	for _, item := range stored {
		d := shipdomain.Derive(item.Events)
		fresh.AddShipment(&item.Shipment, d.Status)
	}

	a.mu.Lock()
	a.snapshot = fresh
	snap := a.snapshot.Clone()
	a.mu.Unlock()

	a.publish(snap)
	return nil
}

func (a *Aggregator) publish(snapshot domain.Snapshot) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(context.Background(), snapshot); err != nil {
		logger.Get().Error("Failed to publish analytics snapshot", zap.Error(err))
	}
}
