package request

import (
	"time"

	"ticketing-engine/internal/gateway/payment"

	"github.com/shopspring/decimal"
)

// PaymentWebhookRequest is the provider's confirmation payload. The raw
// body is verified against the signature header before binding.
type PaymentWebhookRequest struct {
	ExternalEventID  string          `json:"external_event_id" binding:"required"`
	PaymentReference string          `json:"payment_reference" binding:"required"`
	Status           string          `json:"status" binding:"required,oneof=succeeded failed"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

func (r PaymentWebhookRequest) ToConfirmation() payment.ConfirmationEvent {
	return payment.ConfirmationEvent{
		ExternalEventID:  r.ExternalEventID,
		PaymentReference: r.PaymentReference,
		Status:           payment.ConfirmationStatus(r.Status),
		Amount:           r.Amount,
		Currency:         r.Currency,
		OccurredAt:       r.OccurredAt,
	}
}
