package response

import (
	"ticketing-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TicketTypeResponse struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"eventId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Capacity   int32     `json:"capacity"`
	Remaining  int32     `json:"remaining"`
	Active     bool      `json:"active"`
}

func FromTicketTypeList(items []*queries.TicketTypeAvailability) []*TicketTypeResponse {
	out := make([]*TicketTypeResponse, 0, len(items))
	for _, item := range items {
		var resp TicketTypeResponse
		_ = copier.Copy(&resp, item)
		out = append(out, &resp)
	}
	return out
}
