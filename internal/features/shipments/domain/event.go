package domain

import "time"

// EventType represents the kind of handling fact a tracking event records.
type EventType string

const (
	EventTypeCreated        EventType = "created"
	EventTypePickup         EventType = "pickup"
	EventTypeInTransit      EventType = "in_transit"
	EventTypeOutForDelivery EventType = "out_for_delivery"
	EventTypeDelivered      EventType = "delivered"
	EventTypeCancelled      EventType = "cancelled"
)

// Valid reports whether the event type is one of the known values.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeCreated, EventTypePickup, EventTypeInTransit,
		EventTypeOutForDelivery, EventTypeDelivered, EventTypeCancelled:
		return true
	}
	return false
}

// Status maps the event type to the lifecycle state it implies.
// A pickup means the package left the origin, so it maps to in_transit.
func (t EventType) Status() Status {
	switch t {
	case EventTypeCreated:
		return StatusPending
	case EventTypePickup, EventTypeInTransit:
		return StatusInTransit
	case EventTypeOutForDelivery:
		return StatusOutForDelivery
	case EventTypeDelivered:
		return StatusDelivered
	case EventTypeCancelled:
		return StatusCancelled
	}
	return StatusPending
}

// DefaultDescription returns the canonical human text for the event type,
// used when the caller does not supply one.
func (t EventType) DefaultDescription() string {
	switch t {
	case EventTypeCreated:
		return "Shipment created and pending pickup"
	case EventTypePickup:
		return "Shipment picked up from origin"
	case EventTypeInTransit:
		return "Shipment is in transit"
	case EventTypeOutForDelivery:
		return "Shipment is out for delivery"
	case EventTypeDelivered:
		return "Shipment has been delivered"
	case EventTypeCancelled:
		return "Shipment has been cancelled"
	}
	return "Status updated"
}

// TrackingEvent is an immutable, timestamped fact about a shipment's
// handling. Events are append-only: once admitted they are never mutated
// or deleted, and the shipment status is always derived from them.
type TrackingEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`
	// TrackingNumber identifies the shipment the event belongs to.
	TrackingNumber string `json:"tracking_number"`
	// Type is the kind of handling fact recorded.
	Type EventType `json:"event_type"`
	// Description is the human-readable text for the event.
	Description string `json:"description"`
	// Location is where the event occurred, if known.
	Location string `json:"location,omitempty"`
	// Timestamp is the caller-supplied event time.
	Timestamp time.Time `json:"timestamp"`
	// Sequence is the store-assigned admission order within the shipment,
	// used as a tie-break when timestamps are equal.
	Sequence int64 `json:"sequence"`
}
