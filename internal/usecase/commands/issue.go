package commands

import (
	"context"

	"ticketing-engine/internal/domain/ticket"
	"ticketing-engine/internal/usecase/shared"
)

// issueTickets materializes one ticket per ordered unit. It is safe to
// call again for the same order: existing tickets are returned as-is and
// no new rows are written, so an order never ends up with a partial or
// doubled ticket set.
func issueTickets(ctx context.Context, tx shared.Tx, snap *shared.OrderSnapshot) ([]*ticket.IssuedTicket, error) {
	existing, err := tx.Tickets().FindByOrderID(ctx, tx.DB(), snap.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	var tickets []*ticket.IssuedTicket
	for _, item := range snap.Items {
		for i := int32(0); i < item.Quantity; i++ {
			t, err := ticket.NewIssuedTicket(snap.ID, item.TicketTypeID)
			if err != nil {
				return nil, err
			}
			tickets = append(tickets, t)
		}
	}

	if err := tx.Tickets().CreateBatch(ctx, tx.DB(), tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
