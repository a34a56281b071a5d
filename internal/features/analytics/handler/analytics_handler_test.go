package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipone/internal/features/analytics/domain"
	"shipone/internal/features/analytics/service"
	"shipone/internal/features/shipments/adapters"
	shipdomain "shipone/internal/features/shipments/domain"
	shipservice "shipone/internal/features/shipments/service"
)

// TestAnalyticsHandler_GetDashboard verifies the dashboard endpoint reflects
// the aggregator's counters.
func TestAnalyticsHandler_GetDashboard(t *testing.T) {
	aggregator := service.NewAggregator(nil)
	store := adapters.NewMemoryShipmentStore()
	svc := shipservice.NewShipmentService(
		store,
		adapters.NewTrackingNumberGenerator(adapters.DefaultTrackingPrefix),
		aggregator,
	)

	shipment, err := svc.Create(context.Background(), shipdomain.NewShipmentInput{
		RecipientName:      "Maria Silva",
		OriginAddress:      "Av. Paulista 1000",
		DestinationAddress: "Rua Augusta 500",
		OriginCity:         "Lisbon",
		DestinationCity:    "Sao Paulo",
		OriginCountry:      "Portugal",
		DestinationCountry: "Brazil",
		Weight:             2.5,
		PackageType:        shipdomain.PackageTypeBox,
		ServiceType:        shipdomain.ServiceTypeStandard,
	})
	require.NoError(t, err)
	_, err = svc.AdmitEvent(context.Background(), shipment.TrackingNumber, shipservice.EventInput{
		Type: shipdomain.EventTypePickup,
	})
	require.NoError(t, err)

	handler := NewAnalyticsHandler(aggregator)

	app := fiber.New()
	app.Get("/analytics/dashboard", handler.GetDashboard)

	req := httptest.NewRequest("GET", "/analytics/dashboard", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Analytics domain.Snapshot `json:"analytics"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, int64(1), result.Analytics.TotalShipments)
	assert.Equal(t, int64(0), result.Analytics.PendingShipments)
	assert.Equal(t, int64(1), result.Analytics.InTransitShipments)
	assert.Equal(t, int64(1), result.Analytics.ServiceTypeDistribution["standard"])
	assert.Equal(t, int64(1), result.Analytics.DestinationCountryDistribution["Brazil"])
}
