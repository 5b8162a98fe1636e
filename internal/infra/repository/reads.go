package repository

import (
	"context"

	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"
	"ticketing-engine/internal/pkg/pgconv"
	"ticketing-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CommandReads serves the lookups commands need before opening a write
// transaction (catalog snapshots, idempotency replay).
type CommandReads struct {
	db db.DBTX
}

func NewCommandReads(dbtx db.DBTX) *CommandReads {
	return &CommandReads{db: dbtx}
}

func (r *CommandReads) EventByID(ctx context.Context, id uuid.UUID) (*shared.EventSnapshot, error) {
	var snap shared.EventSnapshot
	err := r.db.QueryRow(ctx, `
SELECT id, host_id, name, active
FROM events
WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&snap.ID, &snap.HostID, &snap.Name, &snap.Active)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find event", err)
	}
	return &snap, nil
}

func (r *CommandReads) TicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]shared.TicketTypeSnapshot, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, event_id, name, price_cents, capacity, reserved, issued_count, active
FROM ticket_types
WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find ticket types", err)
	}
	defer rows.Close()

	var snaps []shared.TicketTypeSnapshot
	for rows.Next() {
		var snap shared.TicketTypeSnapshot
		err := rows.Scan(&snap.ID, &snap.EventID, &snap.Name, &snap.PriceCents,
			&snap.Capacity, &snap.Reserved, &snap.IssuedCount, &snap.Active)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan ticket type", err)
		}
		snaps = append(snaps, snap)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate ticket types", rows.Err())
	}
	return snaps, nil
}

func (r *CommandReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec           shared.IdempotencyRecord
		resultOrderID pgtype.UUID
		expiresAt     pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
SELECT key, user_id, status, request_hash, result_order_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`, key, userID).
		Scan(&rec.Key, &rec.UserID, &rec.Status, &rec.RequestHash, &resultOrderID, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find idempotency key", err)
	}
	rec.ResultOrderID = pgconv.UUIDPtrFromPgtype(resultOrderID)
	rec.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &rec, nil
}
