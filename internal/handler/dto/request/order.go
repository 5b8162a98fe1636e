package request

import (
	"strings"

	"ticketing-engine/internal/domain/order"

	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	EventID  uuid.UUID          `json:"event_id" binding:"required"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Attendee AttendeeRequest    `json:"attendee" binding:"required"`
}

type OrderItemRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int32     `json:"quantity" binding:"required,min=1,max=10"`
}

type AttendeeRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (r CreateOrderRequest) RequestedItems() []order.RequestedItem {
	items := make([]order.RequestedItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, order.RequestedItem{
			TicketTypeID: it.TicketTypeID,
			Quantity:     it.Quantity,
		})
	}
	return items
}

func (r CreateOrderRequest) ToAttendee() (order.Attendee, error) {
	return order.NewAttendee(strings.TrimSpace(r.Attendee.Name), strings.TrimSpace(r.Attendee.Email))
}
