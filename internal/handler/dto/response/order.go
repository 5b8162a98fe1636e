package response

import (
	"time"

	"ticketing-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OrderResponse struct {
	ID               uuid.UUID        `json:"id"`
	BuyerID          uuid.UUID        `json:"buyerId"`
	EventID          uuid.UUID        `json:"eventId"`
	EventName        string           `json:"eventName"`
	Status           string           `json:"status"`
	TotalCents       int64            `json:"totalCents"`
	Currency         string           `json:"currency"`
	AttendeeName     string           `json:"attendeeName"`
	AttendeeEmail    string           `json:"attendeeEmail"`
	PaymentReference *string          `json:"paymentReference,omitempty"`
	PaymentHandle    string           `json:"paymentHandle,omitempty"`
	Items            []OrderItem      `json:"items"`
	Tickets          []IssuedTicket   `json:"tickets"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type OrderItem struct {
	TicketTypeID   uuid.UUID `json:"ticketTypeId"`
	TicketTypeName string    `json:"ticketTypeName"`
	Quantity       int32     `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

type IssuedTicket struct {
	ID             uuid.UUID `json:"id"`
	TicketTypeID   uuid.UUID `json:"ticketTypeId"`
	RedemptionCode string    `json:"redemptionCode"`
	Status         string    `json:"status"`
	IssuedAt       time.Time `json:"issuedAt"`
}

type OrderListResponse struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"eventId"`
	EventName  string    `json:"eventName"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"totalCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromOrderView(view *queries.OrderView, paymentHandle string) *OrderResponse {
	var resp OrderResponse
	_ = copier.Copy(&resp, view)
	resp.PaymentHandle = paymentHandle
	return &resp
}

func FromOrderListItem(item *queries.OrderListItem) *OrderListResponse {
	var resp OrderListResponse
	_ = copier.Copy(&resp, item)
	return &resp
}

func FromOrderList(items []*queries.OrderListItem) []*OrderListResponse {
	out := make([]*OrderListResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromOrderListItem(item))
	}
	return out
}
