package repository

import (
	"context"
	"time"

	"ticketing-engine/internal/domain/order"
	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"
	"ticketing-engine/internal/pkg/pgconv"
	"ticketing-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

const insertOrderSQL = `
INSERT INTO orders (id, buyer_id, event_id, status, total_cents, currency, attendee_name, attendee_email)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const insertOrderItemSQL = `
INSERT INTO order_items (order_id, ticket_type_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)`

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) error {
	_, err := tx.Exec(ctx, insertOrderSQL,
		o.ID(), o.BuyerID(), o.EventID(), o.Status().String(),
		o.Total().Cents(), o.Currency(), o.Attendee().Name(), o.Attendee().Email(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	for _, li := range o.LineItems() {
		_, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID(), li.TicketTypeID(), li.Quantity(), li.UnitPrice().Cents(),
		)
		if err != nil {
			return infra.WrapRepoErr("failed to create order line item", err)
		}
	}

	return nil
}

func (r *OrderRepository) SetPaymentReference(ctx context.Context, tx db.DBTX, orderID uuid.UUID, ref string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET payment_reference = $2, updated_at = now() WHERE id = $1`,
		orderID, ref,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to set payment reference", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr("order not found", infra.KindNotFound)
	}
	return nil
}

// TransitionFromPending is the single gate for leaving the pending state.
// Exactly one caller observes true per order, which is what makes release
// and issuance run once even when the reaper races the reconciler.
func (r *OrderRepository) TransitionFromPending(ctx context.Context, tx db.DBTX, orderID uuid.UUID, next order.Status) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 AND status = 'pending'`,
		orderID, next.String(),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to transition order", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) FindForUpdateByPaymentRef(ctx context.Context, tx db.DBTX, paymentRef string) (*shared.OrderSnapshot, error) {
	return r.findForUpdate(ctx, tx, "payment_reference = $1", paymentRef)
}

func (r *OrderRepository) FindForUpdateByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.OrderSnapshot, error) {
	return r.findForUpdate(ctx, tx, "id = $1", id)
}

func (r *OrderRepository) findForUpdate(ctx context.Context, tx db.DBTX, cond string, arg any) (*shared.OrderSnapshot, error) {
	query := `
SELECT id, buyer_id, event_id, status, total_cents, currency,
       attendee_name, attendee_email, payment_reference, created_at
FROM orders
WHERE ` + cond + `
FOR UPDATE`

	snap, err := scanOrderSnapshot(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load order", err)
	}

	if err := r.loadItems(ctx, tx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ClaimOverduePending locks the batch with SKIP LOCKED so concurrent reaper
// runs partition the work instead of serializing on it.
func (r *OrderRepository) ClaimOverduePending(ctx context.Context, tx db.DBTX, cutoff time.Time, limit int) ([]shared.OrderSnapshot, error) {
	rows, err := tx.Query(ctx, `
SELECT id, buyer_id, event_id, status, total_cents, currency,
       attendee_name, attendee_email, payment_reference, created_at
FROM orders
WHERE status = 'pending' AND created_at < $1
ORDER BY created_at
LIMIT $2
FOR UPDATE SKIP LOCKED`, cutoff, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim overdue orders", err)
	}
	defer rows.Close()

	var snaps []shared.OrderSnapshot
	for rows.Next() {
		snap, err := scanOrderSnapshot(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan overdue order", err)
		}
		snaps = append(snaps, *snap)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate overdue orders", rows.Err())
	}

	for i := range snaps {
		if err := r.loadItems(ctx, tx, &snaps[i]); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, tx db.DBTX, snap *shared.OrderSnapshot) error {
	rows, err := tx.Query(ctx, `
SELECT ticket_type_id, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY ticket_type_id`, snap.ID)
	if err != nil {
		return infra.WrapRepoErr("failed to load order line items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item shared.LineItemSnapshot
		if err := rows.Scan(&item.TicketTypeID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return infra.WrapRepoErr("failed to scan order line item", err)
		}
		snap.Items = append(snap.Items, item)
	}
	if rows.Err() != nil {
		return infra.WrapRepoErr("failed to iterate order line items", rows.Err())
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderSnapshot(row rowScanner) (*shared.OrderSnapshot, error) {
	var (
		snap       shared.OrderSnapshot
		status     string
		paymentRef pgtype.Text
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&snap.ID, &snap.BuyerID, &snap.EventID, &status, &snap.TotalCents,
		&snap.Currency, &snap.AttendeeName, &snap.AttendeeEmail, &paymentRef, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	snap.Status = order.Status(status)
	snap.PaymentReference = pgconv.StringPtrFromPgtype(paymentRef)
	snap.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &snap, nil
}
