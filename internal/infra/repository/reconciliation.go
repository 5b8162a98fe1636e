package repository

import (
	"context"

	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"

	"github.com/google/uuid"
)

// ReconciliationRepository is the idempotency ledger for payment
// confirmations: one row per external event id ever processed. The
// conditional insert is the guard that makes at-least-once webhook delivery
// safe.
type ReconciliationRepository struct {
	db db.DBTX
}

func NewReconciliationRepository(dbtx db.DBTX) *ReconciliationRepository {
	return &ReconciliationRepository{db: dbtx}
}

func (r *ReconciliationRepository) TryInsert(ctx context.Context, tx db.DBTX, externalEventID, paymentRef string) (bool, error) {
	tag, err := tx.Exec(ctx, `
INSERT INTO reconciliation_records (external_event_id, payment_reference, resolution)
VALUES ($1, $2, 'processing')
ON CONFLICT (external_event_id) DO NOTHING`,
		externalEventID, paymentRef,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert reconciliation record", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReconciliationRepository) Resolve(ctx context.Context, tx db.DBTX, externalEventID string, orderID *uuid.UUID, outcome, resolution string) error {
	tag, err := tx.Exec(ctx, `
UPDATE reconciliation_records
SET order_id = $2, outcome = $3, resolution = $4, resolved_at = now()
WHERE external_event_id = $1`,
		externalEventID, orderID, outcome, resolution,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to resolve reconciliation record", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr("reconciliation record not found", infra.KindNotFound)
	}
	return nil
}
