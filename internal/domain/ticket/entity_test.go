//go:build unit

package ticket_test

import (
	"testing"

	"ticketing-engine/internal/domain/ticket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssuedTicket(t *testing.T) {
	orderID := uuid.New()
	typeID := uuid.New()

	actual, err := ticket.NewIssuedTicket(orderID, typeID)
	require.NoError(t, err)
	require.NotNil(t, actual)

	assert.NotEqual(t, uuid.Nil, actual.ID())
	assert.Equal(t, orderID, actual.OrderID())
	assert.Equal(t, typeID, actual.TicketTypeID())
	assert.Equal(t, ticket.StatusActive, actual.Status())
	assert.Len(t, actual.RedemptionCode(), 26)
}

func TestRedemptionCodesDiffer(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		tk, err := ticket.NewIssuedTicket(uuid.New(), uuid.New())
		require.NoError(t, err)
		_, dup := seen[tk.RedemptionCode()]
		require.False(t, dup, "redemption code repeated")
		seen[tk.RedemptionCode()] = struct{}{}
	}
}
