package payment

import (
	"context"
	"time"

	"ticketing-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrGatewayUnavailable = errs.New("payment gateway unavailable")
	ErrGatewayRejected    = errs.New("payment gateway rejected the request")
)

// PaymentRequest asks the provider to collect a payment for an order.
type PaymentRequest struct {
	OrderID  uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Memo     string
}

// PaymentIntent is the provider's handle for an initiated payment.
// PaymentReference is the provider-side id later echoed back on webhooks.
// ClientHandle is what the buyer uses to complete the payment (checkout
// URL or QR payload, depending on the provider).
type PaymentIntent struct {
	PaymentReference string
	ClientHandle     string
}

type ConfirmationStatus string

const (
	ConfirmationSucceeded ConfirmationStatus = "succeeded"
	ConfirmationFailed    ConfirmationStatus = "failed"
)

func (s ConfirmationStatus) IsValid() bool {
	return s == ConfirmationSucceeded || s == ConfirmationFailed
}

// ConfirmationEvent is a provider webhook notification. ExternalEventID
// uniquely identifies the delivery attempt family on the provider side
// and keys the idempotency ledger.
type ConfirmationEvent struct {
	ExternalEventID  string
	PaymentReference string
	Status           ConfirmationStatus
	Amount           decimal.Decimal
	Currency         string
	OccurredAt       time.Time
}

type Gateway interface {
	CreatePaymentRequest(ctx context.Context, req *PaymentRequest) (*PaymentIntent, error)
}

// AmountFromCents converts the ledger's integer-cents representation to
// the decimal major units providers expect on the wire.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
