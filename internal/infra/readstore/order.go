package readstore

import (
	"context"

	"ticketing-engine/internal/infra"
	"ticketing-engine/internal/infra/db"
	"ticketing-engine/internal/pkg/pgconv"
	"ticketing-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

const findOrderViewSQL = `
SELECT o.id, o.buyer_id, o.event_id, e.name, o.status, o.total_cents, o.currency,
       o.attendee_name, o.attendee_email, o.payment_reference, o.created_at, o.updated_at
FROM orders o
JOIN events e ON e.id = o.event_id
WHERE o.id = $1
`

const findOrderItemViewsSQL = `
SELECT oi.ticket_type_id, tt.name, oi.quantity, oi.unit_price_cents
FROM order_items oi
JOIN ticket_types tt ON tt.id = oi.ticket_type_id
WHERE oi.order_id = $1
ORDER BY tt.name
`

const findOrderTicketViewsSQL = `
SELECT id, ticket_type_id, redemption_code, status, issued_at
FROM issued_tickets
WHERE order_id = $1
ORDER BY issued_at, id
`

func (s *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var view queries.OrderView
	err := s.db.QueryRow(ctx, findOrderViewSQL, id).Scan(
		&view.ID, &view.BuyerID, &view.EventID, &view.EventName, &view.Status,
		&view.TotalCents, &view.Currency, &view.AttendeeName, &view.AttendeeEmail,
		&view.PaymentReference, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, queries.ErrOrderNotFound
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	items, err := s.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Items = items

	tickets, err := s.findTickets(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Tickets = tickets

	return &view, nil
}

func (s *OrderReadStore) findItems(ctx context.Context, orderID uuid.UUID) ([]queries.OrderItemView, error) {
	rows, err := s.db.Query(ctx, findOrderItemViewsSQL, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order items", err)
	}
	defer rows.Close()

	items := make([]queries.OrderItemView, 0, 4)
	for rows.Next() {
		var item queries.OrderItemView
		if err := rows.Scan(&item.TicketTypeID, &item.TicketTypeName, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}

func (s *OrderReadStore) findTickets(ctx context.Context, orderID uuid.UUID) ([]queries.IssuedTicketView, error) {
	rows, err := s.db.Query(ctx, findOrderTicketViewsSQL, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find issued tickets", err)
	}
	defer rows.Close()

	tickets := make([]queries.IssuedTicketView, 0, 4)
	for rows.Next() {
		var t queries.IssuedTicketView
		if err := rows.Scan(&t.ID, &t.TicketTypeID, &t.RedemptionCode, &t.Status, &t.IssuedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan issued ticket", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate issued tickets", err)
	}
	return tickets, nil
}

const listOrdersByBuyerSQL = `
SELECT o.id, o.event_id, e.name, o.status, o.total_cents, o.currency, o.created_at
FROM orders o
JOIN events e ON e.id = o.event_id
WHERE o.buyer_id = $1
ORDER BY o.created_at DESC
`

func (s *OrderReadStore) FindByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*queries.OrderListItem, error) {
	rows, err := s.db.Query(ctx, listOrdersByBuyerSQL, buyerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	list := make([]*queries.OrderListItem, 0, 8)
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(&item.ID, &item.EventID, &item.EventName, &item.Status, &item.TotalCents, &item.Currency, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate orders", err)
	}
	return list, nil
}
