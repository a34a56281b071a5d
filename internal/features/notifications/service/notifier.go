package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shipone/internal/core/httpclient"
	"shipone/internal/core/logger"
	"shipone/internal/features/notifications/domain"
	shipdomain "shipone/internal/features/shipments/domain"
)

// WebhookNotifier implements the registry's StatusObserver by POSTing a
// JSON notification to a configured webhook for every shipment creation
// and status transition. Delivery is fire-and-forget with a bounded
// timeout: a slow or failing webhook never blocks or fails the write that
// triggered it.
type WebhookNotifier struct {
	url    string
	client *http.Client

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewWebhookNotifier creates a notifier targeting the given URL.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: httpclient.NewClient(timeout),
		now:    time.Now,
	}
}

// ShipmentCreated implements ports.StatusObserver.
func (n *WebhookNotifier) ShipmentCreated(shipment *shipdomain.Shipment) {
	n.dispatch(domain.ForTransition(shipment, "", shipment.Status, n.now().UTC()))
}

// StatusChanged implements ports.StatusObserver.
func (n *WebhookNotifier) StatusChanged(shipment *shipdomain.Shipment, previous, current shipdomain.Status) {
	if previous == current {
		return
	}
	n.dispatch(domain.ForTransition(shipment, previous, current, n.now().UTC()))
}

func (n *WebhookNotifier) dispatch(notification domain.Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		logger.Get().Error("Failed to marshal notification", zap.Error(err))
		return
	}

	go n.post(notification.TrackingNumber, payload)
}

func (n *WebhookNotifier) post(trackingNumber string, payload []byte) {
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		logger.Get().Error("Failed to deliver notification",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Get().Warn("Notification webhook rejected payload",
			zap.String("tracking_number", trackingNumber),
			zap.Int("status_code", resp.StatusCode),
		)
	}
}
