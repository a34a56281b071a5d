package domain

import (
	"fmt"
	"time"

	shipments "shipone/internal/features/shipments/domain"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the payload delivered to the configured webhook when a
// shipment is created or changes status.
type Notification struct {
	TrackingNumber string           `json:"tracking_number"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Severity       Severity         `json:"severity"`
	PreviousStatus shipments.Status `json:"previous_status,omitempty"`
	Status         shipments.Status `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ForTransition builds the notification for a shipment entering the given
// status. The previous status is empty for a freshly created shipment.
func ForTransition(shipment *shipments.Shipment, previous, current shipments.Status, at time.Time) Notification {
	n := Notification{
		TrackingNumber: shipment.TrackingNumber,
		PreviousStatus: previous,
		Status:         current,
		Severity:       SeverityInfo,
		CreatedAt:      at,
	}

	switch {
	case previous == "":
		n.Title = "Shipment Created"
		n.Message = fmt.Sprintf("Your shipment %s has been created", shipment.TrackingNumber)
		n.Severity = SeveritySuccess
	case current == shipments.StatusInTransit:
		n.Title = "Shipment In Transit"
		n.Message = fmt.Sprintf("Your shipment %s is in transit", shipment.TrackingNumber)
	case current == shipments.StatusOutForDelivery:
		n.Title = "Out For Delivery"
		n.Message = fmt.Sprintf("Your shipment %s is out for delivery", shipment.TrackingNumber)
	case current == shipments.StatusDelivered:
		n.Title = "Shipment Delivered"
		n.Message = fmt.Sprintf("Your shipment %s has been delivered", shipment.TrackingNumber)
		n.Severity = SeveritySuccess
	case current == shipments.StatusCancelled:
		n.Title = "Shipment Cancelled"
		n.Message = fmt.Sprintf("Your shipment %s has been cancelled", shipment.TrackingNumber)
		n.Severity = SeverityError
	default:
		n.Title = "Shipment Updated"
		n.Message = fmt.Sprintf("Your shipment %s status changed to %s", shipment.TrackingNumber, current)
	}

	return n
}
