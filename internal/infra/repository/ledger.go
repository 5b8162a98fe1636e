package repository

import (
	"context"

	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"

	"github.com/google/uuid"
)

// TicketTypeLedger owns the reserved/issued_count columns. All three
// mutations are single-statement conditional updates so that a concurrent
// interleaving can never observe or produce a state that violates
// issued_count <= reserved <= capacity; a failed condition shows up as
// zero rows affected, never as a partial write.
type TicketTypeLedger struct {
	db db.DBTX
}

func NewTicketTypeLedger(dbtx db.DBTX) *TicketTypeLedger {
	return &TicketTypeLedger{db: dbtx}
}

const tryReserveSQL = `
UPDATE ticket_types
SET reserved = reserved + $2, updated_at = now()
WHERE id = $1
  AND active
  AND capacity - reserved >= $2`

func (l *TicketTypeLedger) TryReserve(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int32) error {
	tag, err := tx.Exec(ctx, tryReserveSQL, ticketTypeID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve capacity", err)
	}
	if tag.RowsAffected() == 0 {
		return l.explainReserveFailure(ctx, tx, ticketTypeID)
	}
	return nil
}

// Zero rows can mean sold out, inactive, or a bogus id; distinguish them so
// the caller can surface the right condition.
func (l *TicketTypeLedger) explainReserveFailure(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID) error {
	var active bool
	err := tx.QueryRow(ctx, `SELECT active FROM ticket_types WHERE id = $1`, ticketTypeID).Scan(&active)
	if err != nil {
		return infra.WrapRepoErr("ticket type not found", err, infra.KindNotFound)
	}
	if !active {
		return infra.NewRepoErr("ticket type is not on sale", infra.KindNotFound)
	}
	return infra.NewRepoErr("insufficient capacity", infra.KindCapacityExceeded)
}

const releaseSQL = `
UPDATE ticket_types
SET reserved = reserved - $2, updated_at = now()
WHERE id = $1
  AND reserved - issued_count >= $2`

func (l *TicketTypeLedger) Release(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int32) error {
	tag, err := tx.Exec(ctx, releaseSQL, ticketTypeID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to release capacity", err)
	}
	if tag.RowsAffected() == 0 {
		// Accounting drift: releasing more than is held means a transition
		// guard upstream was bypassed.
		return infra.NewRepoErr("release exceeds held capacity", infra.KindDBFailure)
	}
	return nil
}

const confirmIssuedSQL = `
UPDATE ticket_types
SET issued_count = issued_count + $2, updated_at = now()
WHERE id = $1
  AND issued_count + $2 <= reserved`

func (l *TicketTypeLedger) ConfirmIssued(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int32) error {
	tag, err := tx.Exec(ctx, confirmIssuedSQL, ticketTypeID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to confirm issued units", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr("issued units would exceed reservation", infra.KindDBFailure)
	}
	return nil
}
