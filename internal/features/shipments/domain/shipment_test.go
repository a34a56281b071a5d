package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() NewShipmentInput {
	return NewShipmentInput{
		RecipientName:      "Maria Silva",
		OriginAddress:      "Av. Paulista 1000",
		DestinationAddress: "Rua Augusta 500",
		OriginCity:         "Lisbon",
		DestinationCity:    "Sao Paulo",
		OriginCountry:      "Portugal",
		DestinationCountry: "Brazil",
		Weight:             2.5,
		PackageType:        PackageTypeBox,
		ServiceType:        ServiceTypeStandard,
	}
}

// TestNewShipment_Valid verifies the happy path.
func TestNewShipment_Valid(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	shipment, err := NewShipment(validInput(), createdAt)

	require.NoError(t, err)
	assert.Equal(t, StatusPending, shipment.Status)
	assert.Equal(t, createdAt, shipment.CreatedAt)
	assert.Equal(t, DefaultCurrency, shipment.Currency)
	assert.Empty(t, shipment.TrackingNumber)
}

// TestNewShipment_EstimatedDeliveryPerServiceType verifies the SLA windows.
func TestNewShipment_EstimatedDeliveryPerServiceType(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		serviceType ServiceType
		days        int
	}{
		{ServiceTypeStandard, 7},
		{ServiceTypeExpress, 3},
		{ServiceTypeOvernight, 1},
	}

	for _, tc := range cases {
		in := validInput()
		in.ServiceType = tc.serviceType

		shipment, err := NewShipment(in, createdAt)

		require.NoError(t, err)
		assert.Equal(t, createdAt.AddDate(0, 0, tc.days), shipment.EstimatedDelivery,
			"service type %s", tc.serviceType)
	}
}

// TestNewShipment_EnumeratesAllViolations verifies that every violated
// constraint is reported in a single error.
func TestNewShipment_EnumeratesAllViolations(t *testing.T) {
	in := validInput()
	in.RecipientName = ""
	in.Weight = -1

	shipment, err := NewShipment(in, time.Now())

	assert.Nil(t, shipment)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Violations, 2)

	fields := []string{vErr.Violations[0].Field, vErr.Violations[1].Field}
	assert.Contains(t, fields, "recipient_name")
	assert.Contains(t, fields, "weight")
}

// TestNewShipment_InvalidEnums verifies package and service type validation.
func TestNewShipment_InvalidEnums(t *testing.T) {
	in := validInput()
	in.PackageType = "crate"
	in.ServiceType = "drone"

	_, err := NewShipment(in, time.Now())

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Violations, 2)
}

// TestNewShipment_KeepsCallerCurrency verifies that an explicit currency is
// not overwritten by the default.
func TestNewShipment_KeepsCallerCurrency(t *testing.T) {
	in := validInput()
	in.Cost = 49.90
	in.Currency = "EUR"

	shipment, err := NewShipment(in, time.Now())

	require.NoError(t, err)
	assert.Equal(t, "EUR", shipment.Currency)
	assert.Equal(t, 49.90, shipment.Cost)
}

// TestStatusTerminal verifies the terminal state predicate.
func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInTransit.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
}

// TestEventTypeStatus verifies the event type to status mapping.
func TestEventTypeStatus(t *testing.T) {
	assert.Equal(t, StatusPending, EventTypeCreated.Status())
	assert.Equal(t, StatusInTransit, EventTypePickup.Status())
	assert.Equal(t, StatusInTransit, EventTypeInTransit.Status())
	assert.Equal(t, StatusOutForDelivery, EventTypeOutForDelivery.Status())
	assert.Equal(t, StatusDelivered, EventTypeDelivered.Status())
	assert.Equal(t, StatusCancelled, EventTypeCancelled.Status())
}
