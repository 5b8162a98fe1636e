package repository

import (
	"context"
	"time"

	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"

	"github.com/google/uuid"
)

// IdempotencyRepository backs the Idempotency-Key header on order creation.
// Distinct from the reconciliation ledger: this one guards client retries,
// that one guards processor webhooks.
type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO NOTHING`,
		key, userID, endpoint, requestHash, expiresAt,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBodyHash string, resultOrderID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
UPDATE idempotency_keys
SET status = 'completed', response_body_hash = $3, result_order_id = $4, updated_at = now()
WHERE key = $1 AND user_id = $2`,
		key, userID, responseBodyHash, resultOrderID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr("idempotency key not found", infra.KindNotFound)
	}
	return nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1 AND user_id = $2`, key, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, tx db.DBTX, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < $1`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
