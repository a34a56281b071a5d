package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shipone/internal/features/shipments/domain"
	"shipone/internal/features/shipments/service"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service *service.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// ValidationErrorResponse enumerates every violated field of a request.
type ValidationErrorResponse struct {
	Message    string                  `json:"message"`
	Violations []domain.FieldViolation `json:"violations"`
	RayID      string                  `json:"ray_id,omitempty"`
}

// ShipmentResponse is a shipment together with its ordered event log.
type ShipmentResponse struct {
	domain.Shipment
	TrackingEvents []domain.TrackingEvent `json:"tracking_events"`
}

// ListResponse wraps a list of shipments.
type ListResponse struct {
	Shipments []domain.Shipment `json:"shipments"`
}

// AdmitEventResponse carries the sequence assigned to an admitted event.
type AdmitEventResponse struct {
	Sequence int64 `json:"sequence"`
}

// CreateShipment godoc
// @Summary Create a new shipment
// @Description Validates the request, assigns a tracking number, and records the initial created event
// @Tags shipments
// @Accept json
// @Produce json
// @Param shipment body domain.NewShipmentInput true "Shipment details"
// @Success 201 {object} domain.Shipment
// @Failure 400 {object} ValidationErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /shipments [post]
func (h *ShipmentHandler) CreateShipment(c *fiber.Ctx) error {
	var in domain.NewShipmentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID(c),
		})
	}

	shipment, err := h.service.Create(c.Context(), in)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
				Message:    "validation failed",
				Violations: vErr.Violations,
				RayID:      rayID(c),
			})
		}
		if errors.Is(err, domain.ErrTrackingNumbersExhausted) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Message: "could not allocate a tracking number, try again later",
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(shipment)
}

// GetShipment godoc
// @Summary Track a shipment
// @Description Returns the shipment with its derived status and ordered tracking events
// @Tags shipments
// @Produce json
// @Param number path string true "Tracking Number"
// @Success 200 {object} ShipmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{number} [get]
func (h *ShipmentHandler) GetShipment(c *fiber.Ctx) error {
	trackingNumber := c.Params("number")

	shipment, events, err := h.service.Get(c.Context(), trackingNumber)
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "shipment not found",
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(ShipmentResponse{
		Shipment:       *shipment,
		TrackingEvents: events,
	})
}

// ListShipments godoc
// @Summary List shipments
// @Description Lists shipments newest first, optionally filtered by a case-insensitive substring over tracking number, recipient name, and destination city
// @Tags shipments
// @Produce json
// @Param q query string false "Filter substring"
// @Success 200 {object} ListResponse
// @Router /shipments [get]
func (h *ShipmentHandler) ListShipments(c *fiber.Ctx) error {
	shipments, err := h.service.List(c.Context(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(ListResponse{Shipments: shipments})
}

// AdmitEvent godoc
// @Summary Admit a tracking event
// @Description Appends an already-parsed tracking event to the shipment's log
// @Tags shipments
// @Accept json
// @Produce json
// @Param number path string true "Tracking Number"
// @Param event body service.EventInput true "Tracking event"
// @Success 201 {object} AdmitEventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{number}/events [post]
func (h *ShipmentHandler) AdmitEvent(c *fiber.Ctx) error {
	trackingNumber := c.Params("number")

	var in service.EventInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID(c),
		})
	}

	sequence, err := h.service.AdmitEvent(c.Context(), trackingNumber, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEventType):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "invalid event type",
				RayID:   rayID(c),
			})
		case errors.Is(err, domain.ErrShipmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "shipment not found",
				RayID:   rayID(c),
			})
		case errors.Is(err, domain.ErrShipmentTerminal):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Message: "shipment already reached a terminal state",
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(AdmitEventResponse{Sequence: sequence})
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
