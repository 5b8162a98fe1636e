package queries

import (
	"context"
	"time"

	"ticketing-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

// Read models (DTO for read side)
type OrderView struct {
	ID               uuid.UUID          `json:"id"`
	BuyerID          uuid.UUID          `json:"buyer_id"`
	EventID          uuid.UUID          `json:"event_id"`
	EventName        string             `json:"event_name"`
	Status           string             `json:"status"`
	TotalCents       int64              `json:"total_cents"`
	Currency         string             `json:"currency"`
	AttendeeName     string             `json:"attendee_name"`
	AttendeeEmail    string             `json:"attendee_email"`
	PaymentReference *string            `json:"payment_reference,omitempty"`
	Items            []OrderItemView    `json:"items"`
	Tickets          []IssuedTicketView `json:"tickets"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type OrderItemView struct {
	TicketTypeID   uuid.UUID `json:"ticket_type_id"`
	TicketTypeName string    `json:"ticket_type_name"`
	Quantity       int32     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

type IssuedTicketView struct {
	ID             uuid.UUID `json:"id"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id"`
	RedemptionCode string    `json:"redemption_code"`
	Status         string    `json:"status"`
	IssuedAt       time.Time `json:"issued_at"`
}

type OrderListItem struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	EventName  string    `json:"event_name"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
}

type TicketTypeAvailability struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Capacity   int32     `json:"capacity"`
	Remaining  int32     `json:"remaining"`
	Active     bool      `json:"active"`
}

type OrderQueries interface {
	// GetByID scopes the lookup to the requesting buyer.
	GetByID(ctx context.Context, buyerID, id uuid.UUID) (*OrderView, error)
	// GetByIDSystem skips the ownership check; used for idempotency replay.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*OrderListItem, error)
}

type TicketTypeQueries interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*TicketTypeAvailability, error)
}

type OrderReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*OrderListItem, error)
}

type TicketTypeReadStore interface {
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*TicketTypeAvailability, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, buyerID, id uuid.UUID) (*OrderView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.BuyerID != buyerID {
		// Hide existence from other buyers.
		return nil, ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	return q.store.FindByID(ctx, id)
}

func (q *orderQueriesImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*OrderListItem, error) {
	return q.store.FindByBuyerID(ctx, buyerID)
}

type ticketTypeQueriesImpl struct {
	store TicketTypeReadStore
}

func NewTicketTypeQueries(store TicketTypeReadStore) TicketTypeQueries {
	return &ticketTypeQueriesImpl{store: store}
}

func (q *ticketTypeQueriesImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*TicketTypeAvailability, error) {
	return q.store.FindByEventID(ctx, eventID)
}
