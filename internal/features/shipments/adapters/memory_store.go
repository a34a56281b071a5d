package adapters

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shipone/internal/features/shipments/domain"
	"shipone/internal/features/shipments/ports"
)

// record holds one shipment and its event log. Each record carries its own
// mutex so appends are serialized per shipment without blocking the rest of
// the store.
type record struct {
	mu       sync.Mutex
	shipment domain.Shipment
	events   []domain.TrackingEvent
	nextSeq  int64
	terminal bool
}

// MemoryShipmentStore implements ports.ShipmentStore in process memory.
// It is the reference store: tests and the default configuration run on it,
// and the persistence mechanics below the port stay swappable.
type MemoryShipmentStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewMemoryShipmentStore creates an empty in-memory store.
func NewMemoryShipmentStore() *MemoryShipmentStore {
	return &MemoryShipmentStore{
		records: make(map[string]*record),
	}
}

// Insert persists a new shipment and its synthetic created event atomically.
func (s *MemoryShipmentStore) Insert(ctx context.Context, shipment *domain.Shipment, initial domain.TrackingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[shipment.TrackingNumber]; exists {
		return domain.ErrDuplicateTrackingNumber
	}

	initial.TrackingNumber = shipment.TrackingNumber
	initial.Sequence = 1

	rec := &record{
		shipment: *shipment,
		events:   []domain.TrackingEvent{initial},
		nextSeq:  2,
	}
	d := domain.Derive(rec.events)
	rec.shipment.Status = d.Status
	rec.shipment.ActualDelivery = d.ActualDelivery
	rec.terminal = d.Status.Terminal()

	s.records[shipment.TrackingNumber] = rec
	return nil
}

// Append admits an event under the shipment's own lock, so the terminal
// check and the append cannot be split by a concurrent writer.
func (s *MemoryShipmentStore) Append(ctx context.Context, trackingNumber string, event domain.TrackingEvent) (ports.AppendResult, error) {
	rec, ok := s.lookup(trackingNumber)
	if !ok {
		return ports.AppendResult{}, domain.ErrShipmentNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.terminal {
		return ports.AppendResult{}, domain.ErrShipmentTerminal
	}

	previous := rec.shipment.Status

	event.TrackingNumber = trackingNumber
	event.Sequence = rec.nextSeq
	rec.nextSeq++
	rec.events = append(rec.events, event)

	d := domain.Derive(rec.events)
	rec.shipment.Status = d.Status
	rec.shipment.ActualDelivery = d.ActualDelivery
	rec.terminal = d.Status.Terminal()

	updated := rec.shipment
	return ports.AppendResult{
		Sequence: event.Sequence,
		Previous: previous,
		Current:  d.Status,
		Shipment: &updated,
	}, nil
}

// ListOrdered returns the shipment's events ordered for derivation.
func (s *MemoryShipmentStore) ListOrdered(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error) {
	rec, ok := s.lookup(trackingNumber)
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return domain.OrderEvents(rec.events), nil
}

// Get returns a copy of the shipment and its ordered event log.
func (s *MemoryShipmentStore) Get(ctx context.Context, trackingNumber string) (*domain.Shipment, []domain.TrackingEvent, error) {
	rec, ok := s.lookup(trackingNumber)
	if !ok {
		return nil, nil, domain.ErrShipmentNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	shipment := rec.shipment
	return &shipment, domain.OrderEvents(rec.events), nil
}

// List returns shipments matching the filter, newest first.
func (s *MemoryShipmentStore) List(ctx context.Context, filter string) ([]domain.Shipment, error) {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter))
	out := make([]domain.Shipment, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		shipment := rec.shipment
		rec.mu.Unlock()

		if needle == "" || matchesFilter(&shipment, needle) {
			out = append(out, shipment)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TrackingNumber < out[j].TrackingNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// All returns every shipment with its event log.
func (s *MemoryShipmentStore) All(ctx context.Context) ([]ports.StoredShipment, error) {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]ports.StoredShipment, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, ports.StoredShipment{
			Shipment: rec.shipment,
			Events:   domain.OrderEvents(rec.events),
		})
		rec.mu.Unlock()
	}
	return out, nil
}

// lookup finds a record by tracking number. Records are never removed, so
// the returned pointer stays valid after the map lock is released.
func (s *MemoryShipmentStore) lookup(trackingNumber string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[trackingNumber]
	return rec, ok
}

func matchesFilter(shipment *domain.Shipment, needle string) bool {
	return strings.Contains(strings.ToLower(shipment.TrackingNumber), needle) ||
		strings.Contains(strings.ToLower(shipment.RecipientName), needle) ||
		strings.Contains(strings.ToLower(shipment.DestinationCity), needle)
}
