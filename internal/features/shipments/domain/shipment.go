package domain

import (
	"fmt"
	"time"
)

// Status represents the derived lifecycle state of a shipment.
type Status string

const (
	// StatusPending indicates the shipment was created but not yet picked up.
	StatusPending Status = "pending"
	// StatusInTransit indicates the shipment is moving between facilities.
	StatusInTransit Status = "in_transit"
	// StatusOutForDelivery indicates the shipment is on its final delivery leg.
	StatusOutForDelivery Status = "out_for_delivery"
	// StatusDelivered indicates the shipment reached the recipient. Terminal.
	StatusDelivered Status = "delivered"
	// StatusCancelled indicates the shipment was cancelled. Terminal.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further events may be admitted in this state.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ServiceType represents the delivery service level of a shipment.
type ServiceType string

const (
	ServiceTypeStandard  ServiceType = "standard"
	ServiceTypeExpress   ServiceType = "express"
	ServiceTypeOvernight ServiceType = "overnight"
)

// Valid reports whether the service type is one of the known values.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceTypeStandard, ServiceTypeExpress, ServiceTypeOvernight:
		return true
	}
	return false
}

// SLADays returns the promised delivery window in days for the service type.
// Unknown service types fall back to the standard window.
func (s ServiceType) SLADays() int {
	switch s {
	case ServiceTypeOvernight:
		return 1
	case ServiceTypeExpress:
		return 3
	default:
		return 7
	}
}

// PackageType represents the physical packaging of a shipment.
type PackageType string

const (
	PackageTypeBox      PackageType = "box"
	PackageTypeEnvelope PackageType = "envelope"
	PackageTypePallet   PackageType = "pallet"
)

// Valid reports whether the package type is one of the known values.
func (p PackageType) Valid() bool {
	switch p {
	case PackageTypeBox, PackageTypeEnvelope, PackageTypePallet:
		return true
	}
	return false
}

// DefaultCurrency is applied when a cost is given without a currency code.
const DefaultCurrency = "USD"

// Shipment represents a single package movement record.
// Status and ActualDelivery are derived from the shipment's event log,
// never written directly.
type Shipment struct {
	// TrackingNumber uniquely identifies the shipment. Immutable.
	TrackingNumber string `json:"tracking_number"`

	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientPhone string `json:"recipient_phone,omitempty"`

	OriginAddress      string `json:"origin_address"`
	DestinationAddress string `json:"destination_address"`
	OriginCity         string `json:"origin_city"`
	DestinationCity    string `json:"destination_city"`
	OriginCountry      string `json:"origin_country"`
	DestinationCountry string `json:"destination_country"`

	// Weight is the package weight in kg.
	Weight float64 `json:"weight"`
	// Dimensions is a free-form LxWxH description in cm.
	Dimensions  string      `json:"dimensions,omitempty"`
	PackageType PackageType `json:"package_type"`
	ServiceType ServiceType `json:"service_type"`

	Cost     float64 `json:"cost,omitempty"`
	Currency string  `json:"currency"`

	// Status is the lifecycle state derived from the event log.
	Status Status `json:"status"`
	// EstimatedDelivery is CreatedAt plus the service type's SLA window,
	// computed once at creation.
	EstimatedDelivery time.Time `json:"estimated_delivery"`
	// ActualDelivery is the timestamp of the delivered event, if any.
	ActualDelivery *time.Time `json:"actual_delivery,omitempty"`
	// CreatedAt is set once at creation. Immutable.
	CreatedAt time.Time `json:"created_at"`
}

// NewShipmentInput carries the caller-supplied fields for creating a shipment.
type NewShipmentInput struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	RecipientPhone string `json:"recipient_phone"`

	OriginAddress      string `json:"origin_address"`
	DestinationAddress string `json:"destination_address"`
	OriginCity         string `json:"origin_city"`
	DestinationCity    string `json:"destination_city"`
	OriginCountry      string `json:"origin_country"`
	DestinationCountry string `json:"destination_country"`

	Weight      float64     `json:"weight"`
	Dimensions  string      `json:"dimensions"`
	PackageType PackageType `json:"package_type"`
	ServiceType ServiceType `json:"service_type"`

	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

// NewShipment validates the input and builds a Shipment pending persistence.
// All violated constraints are reported in a single ValidationError so a
// caller can surface every bad field at once. The tracking number is left
// empty; the registry assigns it.
func NewShipment(in NewShipmentInput, createdAt time.Time) (*Shipment, error) {
	v := &ValidationError{}

	if in.RecipientName == "" {
		v.Add("recipient_name", "is required")
	}
	if in.OriginCity == "" {
		v.Add("origin_city", "is required")
	}
	if in.OriginCountry == "" {
		v.Add("origin_country", "is required")
	}
	if in.DestinationCity == "" {
		v.Add("destination_city", "is required")
	}
	if in.DestinationCountry == "" {
		v.Add("destination_country", "is required")
	}
	if in.Weight <= 0 {
		v.Add("weight", "must be a positive number")
	}
	if !in.PackageType.Valid() {
		v.Add("package_type", fmt.Sprintf("must be one of %s, %s, %s",
			PackageTypeBox, PackageTypeEnvelope, PackageTypePallet))
	}
	if !in.ServiceType.Valid() {
		v.Add("service_type", fmt.Sprintf("must be one of %s, %s, %s",
			ServiceTypeStandard, ServiceTypeExpress, ServiceTypeOvernight))
	}
	if in.Cost < 0 {
		v.Add("cost", "must not be negative")
	}

	if v.HasViolations() {
		return nil, v
	}

	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Shipment{
		RecipientName:      in.RecipientName,
		RecipientEmail:     in.RecipientEmail,
		RecipientPhone:     in.RecipientPhone,
		OriginAddress:      in.OriginAddress,
		DestinationAddress: in.DestinationAddress,
		OriginCity:         in.OriginCity,
		DestinationCity:    in.DestinationCity,
		OriginCountry:      in.OriginCountry,
		DestinationCountry: in.DestinationCountry,
		Weight:             in.Weight,
		Dimensions:         in.Dimensions,
		PackageType:        in.PackageType,
		ServiceType:        in.ServiceType,
		Cost:               in.Cost,
		Currency:           currency,
		Status:             StatusPending,
		EstimatedDelivery:  createdAt.AddDate(0, 0, in.ServiceType.SLADays()),
		CreatedAt:          createdAt,
	}, nil
}
