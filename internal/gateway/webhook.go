package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

const EventPaymentCaptured = "payment.captured"

type webhookPayment struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhook decodes a gateway webhook body. The body must already have
// passed VerifyWebhook.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, domain.Validationf("malformed webhook: %v", err)
	}
	if event.Event == "" {
		return nil, domain.Validationf("webhook without event")
	}
	return &event, nil
}

// Capture returns the order and payment ids of a captured payment event.
func (e *WebhookEvent) Capture() (orderID, paymentID string, err error) {
	if e.Event != EventPaymentCaptured {
		return "", "", fmt.Errorf("event %q is not a capture", e.Event)
	}
	p := e.Payload.Payment.Entity
	if p.ID == "" || p.OrderID == "" {
		return "", "", domain.Validationf("captured payment without order or payment id")
	}
	return p.OrderID, p.ID, nil
}
