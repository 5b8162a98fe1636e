package builder

import (
	"ticketing-engine/internal/domain/order"

	"github.com/google/uuid"
)

// OrderBuilder assembles a valid purchase by default; tests mutate one
// aspect at a time.
type OrderBuilder struct {
	event         order.EventSpec
	types         map[uuid.UUID]order.TicketTypeSpec
	buyerID       uuid.UUID
	requested     []order.RequestedItem
	currency      string
	attendeeName  string
	attendeeEmail string
}

func NewOrderBuilder() *OrderBuilder {
	eventID := uuid.New()
	typeID := uuid.New()
	return &OrderBuilder{
		event: order.EventSpec{
			ID:     eventID,
			HostID: uuid.New(),
			Active: true,
		},
		types: map[uuid.UUID]order.TicketTypeSpec{
			typeID: {
				ID:         typeID,
				EventID:    eventID,
				PriceCents: 2500,
				Active:     true,
			},
		},
		buyerID: uuid.New(),
		requested: []order.RequestedItem{
			{TicketTypeID: typeID, Quantity: 2},
		},
		currency:      "USD",
		attendeeName:  "Ada Lovelace",
		attendeeEmail: "ada@example.com",
	}
}

func (b *OrderBuilder) WithBuyerID(id uuid.UUID) *OrderBuilder {
	b.buyerID = id
	return b
}

func (b *OrderBuilder) WithHostAsBuyer() *OrderBuilder {
	b.buyerID = b.event.HostID
	return b
}

func (b *OrderBuilder) WithInactiveEvent() *OrderBuilder {
	b.event.Active = false
	return b
}

func (b *OrderBuilder) WithTicketType(spec order.TicketTypeSpec) *OrderBuilder {
	b.types[spec.ID] = spec
	return b
}

func (b *OrderBuilder) WithRequested(items ...order.RequestedItem) *OrderBuilder {
	b.requested = items
	return b
}

func (b *OrderBuilder) WithQuantity(q int32) *OrderBuilder {
	for i := range b.requested {
		b.requested[i].Quantity = q
	}
	return b
}

func (b *OrderBuilder) WithAttendee(name, email string) *OrderBuilder {
	b.attendeeName = name
	b.attendeeEmail = email
	return b
}

func (b *OrderBuilder) FirstTicketTypeID() uuid.UUID {
	return b.requested[0].TicketTypeID
}

func (b *OrderBuilder) EventID() uuid.UUID {
	return b.event.ID
}

func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	attendee, err := order.NewAttendee(b.attendeeName, b.attendeeEmail)
	if err != nil {
		return nil, err
	}
	return order.NewFactory().CreateOrder(b.event, b.types, b.buyerID, b.requested, b.currency, attendee)
}
