package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoLineItems         = errors.New("order requires at least one line item")
	ErrInvalidLineItem     = errors.New("invalid line item")
	ErrInvalidQuantity     = errors.New("invalid line item quantity")
	ErrDuplicateTicketType = errors.New("duplicate ticket type in line items")
	ErrNegativePrice       = errors.New("price cannot be negative")
	ErrInvalidAttendee     = errors.New("invalid attendee info")
	ErrSelfPurchase        = errors.New("host cannot purchase tickets for own event")
	ErrAlreadyFinal        = errors.New("order is already in a terminal state")
)

type Order struct {
	id               uuid.UUID
	buyerID          uuid.UUID
	eventID          uuid.UUID
	lineItems        []LineItem
	status           Status
	total            Money
	currency         string
	attendee         Attendee
	paymentReference *string
	createdAt        time.Time
	updatedAt        time.Time
}

func NewOrder(
	buyerID, eventID uuid.UUID,
	lineItems []LineItem,
	currency string,
	attendee Attendee,
) (*Order, error) {
	if len(lineItems) == 0 {
		return nil, ErrNoLineItems
	}

	seen := make(map[uuid.UUID]struct{}, len(lineItems))
	total := NewMoney(0)
	for _, li := range lineItems {
		if _, dup := seen[li.TicketTypeID()]; dup {
			return nil, ErrDuplicateTicketType
		}
		seen[li.TicketTypeID()] = struct{}{}
		total = total.Add(li.Subtotal())
	}

	return &Order{
		id:        uuid.New(),
		buyerID:   buyerID,
		eventID:   eventID,
		lineItems: lineItems,
		status:    StatusPending,
		total:     total,
		currency:  currency,
		attendee:  attendee,
	}, nil
}

func ReconstructOrder(
	id, buyerID, eventID uuid.UUID,
	lineItems []LineItem,
	status Status,
	total Money,
	currency string,
	attendee Attendee,
	paymentReference *string,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:               id,
		buyerID:          buyerID,
		eventID:          eventID,
		lineItems:        lineItems,
		status:           status,
		total:            total,
		currency:         currency,
		attendee:         attendee,
		paymentReference: paymentReference,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// MarkPaid finalizes a pending order. Terminal states never transition again;
// the persistence layer enforces the same rule with a conditional update.
func (o *Order) MarkPaid() error {
	return o.transition(StatusPaid)
}

func (o *Order) MarkFailed() error {
	return o.transition(StatusFailed)
}

func (o *Order) MarkExpired() error {
	return o.transition(StatusExpired)
}

func (o *Order) transition(next Status) error {
	if o.status.IsTerminal() {
		return ErrAlreadyFinal
	}
	o.status = next
	return nil
}

func (o *Order) AttachPaymentReference(ref string) {
	o.paymentReference = &ref
}

func (o *Order) IsPending() bool {
	return o.status == StatusPending
}

func (o *Order) ID() uuid.UUID             { return o.id }
func (o *Order) BuyerID() uuid.UUID        { return o.buyerID }
func (o *Order) EventID() uuid.UUID        { return o.eventID }
func (o *Order) LineItems() []LineItem     { return o.lineItems }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Total() Money              { return o.total }
func (o *Order) Currency() string          { return o.currency }
func (o *Order) Attendee() Attendee        { return o.attendee }
func (o *Order) PaymentReference() *string { return o.paymentReference }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) UpdatedAt() time.Time      { return o.updatedAt }

// UnitCount is the number of individual tickets this order will issue.
func (o *Order) UnitCount() int32 {
	var n int32
	for _, li := range o.lineItems {
		n += li.Quantity()
	}
	return n
}
