package response

import "github.com/google/uuid"

// WebhookAckResponse is always returned with 200 once the event has been
// durably recorded, so the provider stops redelivering.
type WebhookAckResponse struct {
	Received   bool       `json:"received"`
	Resolution string     `json:"resolution"`
	OrderID    *uuid.UUID `json:"orderId,omitempty"`
}
