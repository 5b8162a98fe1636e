//go:build unit

package order_test

import (
	"testing"

	"ticketing-engine/internal/domain/order"
	"ticketing-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.OrderBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewOrderBuilder()
			if tc.mutate != nil {
				tc.mutate(b)
			}
			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, actual)
		})
	}
}

func TestOrder(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, order.StatusPending, actual.Status())
		assert.True(t, actual.IsPending())
		assert.Equal(t, int64(5000), actual.Total().Cents())
		assert.Equal(t, "USD", actual.Currency())
		assert.Equal(t, int32(2), actual.UnitCount())
		assert.Nil(t, actual.PaymentReference())
	})

	t.Run("purchase validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "host buying own event",
				mutate: func(b *builder.OrderBuilder) { b.WithHostAsBuyer() },
				errIs:  order.ErrSelfPurchase,
			},
			{
				name:   "inactive event",
				mutate: func(b *builder.OrderBuilder) { b.WithInactiveEvent() },
				errIs:  order.ErrEventInactive,
			},
			{
				name:   "unknown ticket type",
				mutate: func(b *builder.OrderBuilder) {
					b.WithRequested(order.RequestedItem{TicketTypeID: uuid.New(), Quantity: 1})
				},
				errIs: order.ErrUnknownTicketType,
			},
			{
				name:   "no line items",
				mutate: func(b *builder.OrderBuilder) { b.WithRequested() },
				errIs:  order.ErrNoLineItems,
			},
			{
				name:   "zero quantity",
				mutate: func(b *builder.OrderBuilder) { b.WithQuantity(0) },
				errIs:  order.ErrInvalidQuantity,
			},
			{
				name:   "quantity above per-order cap",
				mutate: func(b *builder.OrderBuilder) { b.WithQuantity(11) },
				errIs:  order.ErrInvalidQuantity,
			},
			{
				name:   "maximum quantity",
				mutate: func(b *builder.OrderBuilder) { b.WithQuantity(10) },
			},
			{
				name: "duplicate ticket type",
				mutate: func(b *builder.OrderBuilder) {
					id := b.FirstTicketTypeID()
					b.WithRequested(
						order.RequestedItem{TicketTypeID: id, Quantity: 1},
						order.RequestedItem{TicketTypeID: id, Quantity: 2},
					)
				},
				errIs: order.ErrDuplicateTicketType,
			},
			{
				name:   "empty attendee name",
				mutate: func(b *builder.OrderBuilder) { b.WithAttendee("", "ada@example.com") },
				errIs:  order.ErrInvalidAttendee,
			},
			{
				name:   "attendee email without at sign",
				mutate: func(b *builder.OrderBuilder) { b.WithAttendee("Ada", "not-an-email") },
				errIs:  order.ErrInvalidAttendee,
			},
		})
	})

	t.Run("free ticket type totals zero", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		freeID := uuid.New()
		actual, err := b.WithTicketType(order.TicketTypeSpec{
			ID: freeID, EventID: b.EventID(), PriceCents: 0, Active: true,
		}).WithRequested(order.RequestedItem{TicketTypeID: freeID, Quantity: 3}).BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, int64(0), actual.Total().Cents())
		assert.Equal(t, int32(3), actual.UnitCount())
	})
}

func TestOrderTransitions(t *testing.T) {
	newOrder := func(t *testing.T) *order.Order {
		t.Helper()
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		return o
	}

	t.Run("pending to paid", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.MarkPaid())
		assert.Equal(t, order.StatusPaid, o.Status())
	})

	t.Run("pending to failed", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.MarkFailed())
		assert.Equal(t, order.StatusFailed, o.Status())
	})

	t.Run("pending to expired", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.MarkExpired())
		assert.Equal(t, order.StatusExpired, o.Status())
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		for _, finalize := range []func(*order.Order) error{
			(*order.Order).MarkPaid,
			(*order.Order).MarkFailed,
			(*order.Order).MarkExpired,
		} {
			o := newOrder(t)
			require.NoError(t, finalize(o))
			assert.ErrorIs(t, o.MarkPaid(), order.ErrAlreadyFinal)
			assert.ErrorIs(t, o.MarkFailed(), order.ErrAlreadyFinal)
			assert.ErrorIs(t, o.MarkExpired(), order.ErrAlreadyFinal)
		}
	})

	t.Run("payment reference attach", func(t *testing.T) {
		o := newOrder(t)
		o.AttachPaymentReference("pay_123")
		require.NotNil(t, o.PaymentReference())
		assert.Equal(t, "pay_123", *o.PaymentReference())
	})
}
