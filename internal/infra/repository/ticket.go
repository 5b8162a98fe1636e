package repository

import (
	"context"

	"ticketing-engine/internal/domain/ticket"
	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"
	"ticketing-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TicketRepository struct {
	db db.DBTX
}

func NewTicketRepository(dbtx db.DBTX) *TicketRepository {
	return &TicketRepository{db: dbtx}
}

const insertTicketSQL = `
INSERT INTO issued_tickets (id, order_id, ticket_type_id, redemption_code, status)
VALUES ($1, $2, $3, $4, $5)`

func (r *TicketRepository) CreateBatch(ctx context.Context, tx db.DBTX, tickets []*ticket.IssuedTicket) error {
	for _, t := range tickets {
		_, err := tx.Exec(ctx, insertTicketSQL,
			t.ID(), t.OrderID(), t.TicketTypeID(), t.RedemptionCode(), string(t.Status()),
		)
		if err != nil {
			return infra.WrapRepoErr("failed to insert issued ticket", err)
		}
	}
	return nil
}

func (r *TicketRepository) FindByOrderID(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]*ticket.IssuedTicket, error) {
	rows, err := tx.Query(ctx, `
SELECT id, order_id, ticket_type_id, redemption_code, status, issued_at
FROM issued_tickets
WHERE order_id = $1
ORDER BY issued_at, id`, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find tickets by order", err)
	}
	defer rows.Close()

	var tickets []*ticket.IssuedTicket
	for rows.Next() {
		var (
			id, oID, ttID uuid.UUID
			code, status  string
			issuedAt      pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &oID, &ttID, &code, &status, &issuedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan issued ticket", err)
		}
		tickets = append(tickets, ticket.ReconstructIssuedTicket(
			id, oID, ttID, code, ticket.Status(status), pgconv.TimeFromPgtype(issuedAt),
		))
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate issued tickets", rows.Err())
	}
	return tickets, nil
}
