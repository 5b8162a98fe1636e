package readstore

import (
	"context"

	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"
	"ticketing-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type TicketTypeReadStore struct {
	db db.DBTX
}

func NewTicketTypeReadStore(dbtx db.DBTX) *TicketTypeReadStore {
	return &TicketTypeReadStore{db: dbtx}
}

const listTicketTypesByEventSQL = `
SELECT id, event_id, name, price_cents, capacity, capacity - reserved, active
FROM ticket_types
WHERE event_id = $1
ORDER BY price_cents, name
`

func (s *TicketTypeReadStore) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*queries.TicketTypeAvailability, error) {
	rows, err := s.db.Query(ctx, listTicketTypesByEventSQL, eventID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list ticket types", err)
	}
	defer rows.Close()

	list := make([]*queries.TicketTypeAvailability, 0, 4)
	for rows.Next() {
		var tt queries.TicketTypeAvailability
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.Capacity, &tt.Remaining, &tt.Active); err != nil {
			return nil, infra.WrapRepoErr("failed to scan ticket type", err)
		}
		list = append(list, &tt)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ticket types", err)
	}
	return list, nil
}
