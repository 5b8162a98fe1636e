package order

import (
	"strings"

	"github.com/google/uuid"
)

const maxQuantityPerItem = 10

type Money struct {
	cents int64
}

func NewMoney(cents int64) Money {
	return Money{cents: cents}
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) MulQuantity(q int32) Money {
	return Money{cents: m.cents * int64(q)}
}

func (m Money) IsNegative() bool {
	return m.cents < 0
}

// LineItem is one (ticket type, quantity) pair with the unit price
// snapshotted at order-creation time. Later catalog price changes never
// affect an existing order.
type LineItem struct {
	ticketTypeID uuid.UUID
	quantity     int32
	unitPrice    Money
}

func NewLineItem(ticketTypeID uuid.UUID, quantity int32, unitPrice Money) (LineItem, error) {
	if ticketTypeID == uuid.Nil {
		return LineItem{}, ErrInvalidLineItem
	}
	if quantity < 1 || quantity > maxQuantityPerItem {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return LineItem{}, ErrNegativePrice
	}
	return LineItem{
		ticketTypeID: ticketTypeID,
		quantity:     quantity,
		unitPrice:    unitPrice,
	}, nil
}

func (li LineItem) TicketTypeID() uuid.UUID { return li.ticketTypeID }
func (li LineItem) Quantity() int32         { return li.quantity }
func (li LineItem) UnitPrice() Money        { return li.unitPrice }

func (li LineItem) Subtotal() Money {
	return li.unitPrice.MulQuantity(li.quantity)
}

// Attendee is the contact the confirmation is sent to. It may differ from
// the buyer account (gift purchases).
type Attendee struct {
	name  string
	email string
}

func NewAttendee(name, email string) (Attendee, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return Attendee{}, ErrInvalidAttendee
	}
	return Attendee{name: name, email: email}, nil
}

func (a Attendee) Name() string  { return a.name }
func (a Attendee) Email() string { return a.email }
