package ports

import (
	"context"

	"shipone/internal/features/shipments/domain"
)

// AppendResult reports the outcome of an admitted tracking event.
type AppendResult struct {
	// Sequence is the store-assigned admission order within the shipment.
	Sequence int64
	// Previous is the derived status before the event was admitted.
	Previous domain.Status
	// Current is the derived status after the event was admitted.
	Current domain.Status
	// Shipment is the record with derived fields refreshed.
	Shipment *domain.Shipment
}

// EventStore is the append-only, per-shipment ordered log of tracking
// events. It is the single source of truth for shipment status.
type EventStore interface {
	// Append admits an event, assigning it the next sequence number for the
	// shipment. The not-yet-terminal check and the append are atomic: a
	// concurrent terminal event cannot slip in between. Returns
	// domain.ErrShipmentNotFound for unknown shipments and
	// domain.ErrShipmentTerminal once a delivered or cancelled event exists.
	Append(ctx context.Context, trackingNumber string, event domain.TrackingEvent) (AppendResult, error)

	// ListOrdered returns the shipment's events ordered by timestamp
	// ascending, sequence as tie-break.
	ListOrdered(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error)
}

// StoredShipment pairs a shipment with its full event log, used by full
// recompute passes such as analytics recovery.
type StoredShipment struct {
	Shipment domain.Shipment
	Events   []domain.TrackingEvent
}

// ShipmentStore owns shipment records and their event logs.
type ShipmentStore interface {
	EventStore

	// Insert persists a new shipment together with its synthetic created
	// event in one atomic step. Returns domain.ErrDuplicateTrackingNumber
	// when the tracking number is already taken.
	Insert(ctx context.Context, shipment *domain.Shipment, initial domain.TrackingEvent) error

	// Get returns the shipment with derived fields refreshed plus its
	// ordered event log. Returns domain.ErrShipmentNotFound when absent.
	Get(ctx context.Context, trackingNumber string) (*domain.Shipment, []domain.TrackingEvent, error)

	// List returns shipments matching the filter (case-insensitive substring
	// over tracking number, recipient name, and destination city; empty
	// matches all) ordered by creation time descending.
	List(ctx context.Context, filter string) ([]domain.Shipment, error)

	// All returns every shipment with its event log, for recovery scans.
	All(ctx context.Context) ([]StoredShipment, error)
}

// TrackingNumberGenerator produces candidate tracking numbers. Candidates
// are not guaranteed unique; the registry resolves collisions by retrying.
type TrackingNumberGenerator interface {
	Next() string
}

// StatusObserver is notified after a shipment creation or an admitted
// event has been durably stored. Called exactly once per admitted event.
type StatusObserver interface {
	ShipmentCreated(shipment *domain.Shipment)
	StatusChanged(shipment *domain.Shipment, previous, current domain.Status)
}
