package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShipmentNotFound is returned when no shipment matches the tracking number.
	ErrShipmentNotFound = errors.New("shipment not found")
	// ErrShipmentTerminal is returned when an event is admitted for a shipment
	// that already reached a delivered or cancelled state.
	ErrShipmentTerminal = errors.New("shipment is in a terminal state")
	// ErrDuplicateTrackingNumber is returned when an insert collides with an
	// already issued tracking number. The registry retries these transparently.
	ErrDuplicateTrackingNumber = errors.New("tracking number already exists")
	// ErrTrackingNumbersExhausted is returned when tracking number generation
	// keeps colliding past the retry bound. Signals keyspace pressure.
	ErrTrackingNumbersExhausted = errors.New("could not generate a unique tracking number")
	// ErrInvalidEventType is returned when an event carries an unknown type.
	ErrInvalidEventType = errors.New("invalid event type")
)

// FieldViolation describes a single violated constraint on an input field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every violated constraint of a create request at
// once, so callers can highlight all bad fields in a single round trip.
// Nothing is persisted when a ValidationError is returned.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

// Add records a violation for the given field.
func (e *ValidationError) Add(field, reason string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Reason: reason})
}

// HasViolations reports whether any constraint was violated.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, fmt.Sprintf("%s %s", v.Field, v.Reason))
	}
	return "validation failed: " + strings.Join(fields, "; ")
}
