package order

import (
	"errors"

	"github.com/google/uuid"
)

// EventSpec is the slice of catalog data the factory needs; catalog CRUD
// lives outside this engine.
type EventSpec struct {
	ID     uuid.UUID
	HostID uuid.UUID
	Active bool
}

type TicketTypeSpec struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	PriceCents int64
	Active     bool
}

type RequestedItem struct {
	TicketTypeID uuid.UUID
	Quantity     int32
}

var (
	ErrEventInactive     = errors.New("event is not open for sale")
	ErrUnknownTicketType = errors.New("ticket type does not belong to event or is inactive")
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateOrder validates the purchase request against catalog snapshots and
// builds a pending order with prices snapshotted as of now. Capacity is not
// checked here; the ledger claims it atomically at persist time.
func (f *Factory) CreateOrder(
	event EventSpec,
	types map[uuid.UUID]TicketTypeSpec,
	buyerID uuid.UUID,
	requested []RequestedItem,
	currency string,
	attendee Attendee,
) (*Order, error) {
	if buyerID == event.HostID {
		return nil, ErrSelfPurchase
	}
	if !event.Active {
		return nil, ErrEventInactive
	}

	lineItems := make([]LineItem, 0, len(requested))
	for _, req := range requested {
		spec, ok := types[req.TicketTypeID]
		if !ok || !spec.Active || spec.EventID != event.ID {
			return nil, ErrUnknownTicketType
		}
		li, err := NewLineItem(spec.ID, req.Quantity, NewMoney(spec.PriceCents))
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, li)
	}

	return NewOrder(buyerID, event.ID, lineItems, currency, attendee)
}
