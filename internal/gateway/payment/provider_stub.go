package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var _ Gateway = (*stubGateway)(nil)

// stubGateway is the default provider for local development. It accepts
// every request and hands back a reference that the fake-webhook tooling
// can confirm against.
type stubGateway struct{}

func NewStubGateway() Gateway {
	return &stubGateway{}
}

func (g *stubGateway) CreatePaymentRequest(_ context.Context, req *PaymentRequest) (*PaymentIntent, error) {
	ref := fmt.Sprintf("stub-%s", uuid.New())
	return &PaymentIntent{
		PaymentReference: ref,
		ClientHandle:     fmt.Sprintf("https://pay.example.invalid/checkout/%s?order=%s", ref, req.OrderID),
	}, nil
}
