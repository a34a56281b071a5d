package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipone/internal/core/logger"
	"shipone/internal/features/shipments/domain"
	"shipone/internal/features/shipments/ports"
)

// maxTrackingNumberRetries bounds the generate-and-insert loop when a
// candidate tracking number collides with an already issued one.
const maxTrackingNumberRetries = 5

// EventInput carries the caller-supplied fields of a tracking event.
type EventInput struct {
	Type        domain.EventType `json:"event_type"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ShipmentService is the shipment registry: it owns creation, event
// admission, and tracking lookups, and tells observers about every durable
// creation and status transition.
type ShipmentService struct {
	store     ports.ShipmentStore
	generator ports.TrackingNumberGenerator
	observers []ports.StatusObserver

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewShipmentService creates a ShipmentService. Observers are notified in
// the given order, after the corresponding write is durable.
func NewShipmentService(store ports.ShipmentStore, generator ports.TrackingNumberGenerator, observers ...ports.StatusObserver) *ShipmentService {
	return &ShipmentService{
		store:     store,
		generator: generator,
		observers: observers,
		now:       time.Now,
	}
}

// Create validates the input, assigns a tracking number, and persists the
// shipment together with its synthetic created event. Validation reports
// every violated field at once and consumes no identifier. Tracking number
// collisions are retried transparently up to the bound, after which
// domain.ErrTrackingNumbersExhausted is returned.
func (s *ShipmentService) Create(ctx context.Context, in domain.NewShipmentInput) (*domain.Shipment, error) {
	createdAt := s.now().UTC()

	shipment, err := domain.NewShipment(in, createdAt)
	if err != nil {
		return nil, err
	}

	initial := domain.TrackingEvent{
		ID:          uuid.NewString(),
		Type:        domain.EventTypeCreated,
		Description: domain.EventTypeCreated.DefaultDescription(),
		Location:    shipment.OriginCity,
		Timestamp:   createdAt,
	}

	for attempt := 0; attempt < maxTrackingNumberRetries; attempt++ {
		shipment.TrackingNumber = s.generator.Next()

		err := s.store.Insert(ctx, shipment, initial)
		if errors.Is(err, domain.ErrDuplicateTrackingNumber) {
			logger.Get().Warn("Tracking number collision, retrying",
				zap.String("tracking_number", shipment.TrackingNumber),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("service: failed to persist shipment: %w", err)
		}

		for _, obs := range s.observers {
			obs.ShipmentCreated(shipment)
		}
		return shipment, nil
	}

	return nil, domain.ErrTrackingNumbersExhausted
}

// AdmitEvent appends a tracking event to the shipment's log and returns the
// store-assigned sequence number. The event timestamp defaults to now and
// the description to the canonical text for the event type. Observers see
// the (previous, current) derived status transition exactly once, after the
// append is durable.
func (s *ShipmentService) AdmitEvent(ctx context.Context, trackingNumber string, in EventInput) (int64, error) {
	if !in.Type.Valid() {
		return 0, domain.ErrInvalidEventType
	}

	event := domain.TrackingEvent{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Description: in.Description,
		Location:    in.Location,
		Timestamp:   in.Timestamp,
	}
	if event.Description == "" {
		event.Description = in.Type.DefaultDescription()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}

	result, err := s.store.Append(ctx, trackingNumber, event)
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) || errors.Is(err, domain.ErrShipmentTerminal) {
			return 0, err
		}
		return 0, fmt.Errorf("service: failed to append event: %w", err)
	}

	for _, obs := range s.observers {
		obs.StatusChanged(result.Shipment, result.Previous, result.Current)
	}
	return result.Sequence, nil
}

// Get returns the shipment with derived status plus its ordered event log.
func (s *ShipmentService) Get(ctx context.Context, trackingNumber string) (*domain.Shipment, []domain.TrackingEvent, error) {
	shipment, events, err := s.store.Get(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("service: failed to get shipment: %w", err)
	}
	return shipment, events, nil
}

// List returns shipments matching the filter, newest first. An empty filter
// matches everything.
func (s *ShipmentService) List(ctx context.Context, filter string) ([]domain.Shipment, error) {
	shipments, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list shipments: %w", err)
	}
	return shipments, nil
}
