//go:build e2e

package order_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"

	"ticketing-engine/internal/gateway/payment"
	"ticketing-engine/internal/handler/dto/request"
	"ticketing-engine/internal/handler/dto/response"
	"ticketing-engine/tests/common/authtest"
	"ticketing-engine/tests/common/dbtest"
	"ticketing-engine/tests/common/httptest"
	"ticketing-engine/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	ordersURL         = "/api/orders"
	ticketTypesURL    = "/api/events/%s/ticket-types"
	paymentWebhookURL = "/webhooks/payment"
)

type OrderSuite struct {
	e2e.SharedSuite
}

func (s *OrderSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestOrderSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(OrderSuite))
}

func (s *OrderSuite) buyerToken(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	buyerID := dbtest.CreateTestBuyer(t, s.DB, email)
	token := authtest.NewJWTHelper(s.Config.JWT).GenerateToken(t, buyerID, "buyer")
	return buyerID, token
}

func (s *OrderSuite) createOrder(t *testing.T, token string, req request.CreateOrderRequest) *response.OrderResponse {
	t.Helper()

	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL, req, token,
		map[string]string{"Idempotency-Key": uuid.New().String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created response.OrderResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))
	return &created
}

func (s *OrderSuite) deliverWebhookRaw(t *testing.T, externalEventID, paymentRef, status string) *nethttptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"external_event_id": externalEventID,
		"payment_reference": paymentRef,
		"status":            status,
		"amount":            "50.00",
		"currency":          "USD",
	})
	require.NoError(t, err)

	signer := payment.NewSigner(s.Config.Payment.WebhookSecret)
	return httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, paymentWebhookURL,
		body, "", map[string]string{"X-Webhook-Signature": signer.Sign(body)})
}

func (s *OrderSuite) deliverWebhook(t *testing.T, externalEventID, paymentRef, status string) *response.WebhookAckResponse {
	t.Helper()

	w := s.deliverWebhookRaw(t, externalEventID, paymentRef, status)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ack response.WebhookAckResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &ack))
	return &ack
}

func (s *OrderSuite) countIssuedTickets(t *testing.T, orderID uuid.UUID) int {
	t.Helper()
	var n int
	err := s.DB.QueryRow(context.Background(),
		"SELECT count(*) FROM issued_tickets WHERE order_id = $1", orderID).Scan(&n)
	require.NoError(t, err)
	return n
}

func (s *OrderSuite) orderStatus(t *testing.T, orderID uuid.UUID) string {
	t.Helper()
	var status string
	err := s.DB.QueryRow(context.Background(),
		"SELECT status FROM orders WHERE id = $1", orderID).Scan(&status)
	require.NoError(t, err)
	return status
}

// =============================================================================
// TestCreateOrder - Order creation API tests
// =============================================================================

func (s *OrderSuite) TestCreateOrder() {
	s.Run("Normal case: order created with capacity reserved", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		require.Equal(t, "pending", created.Status)
		require.Equal(t, int64(5000), created.TotalCents)
		require.NotNil(t, created.PaymentReference)
		require.NotEmpty(t, created.PaymentHandle)
		require.Empty(t, created.Tickets)

		reserved, issued := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(2), reserved)
		require.Equal(t, int32(0), issued)
	})

	s.Run("Normal case: same idempotency key replays the first order", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		req := request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		}
		key := uuid.New().String()
		headers := map[string]string{"Idempotency-Key": key}

		w1 := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL, req, token, headers)
		require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())
		var first response.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w1.Body, &first))

		w2 := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL, req, token, headers)
		require.Equal(t, http.StatusOK, w2.Code, "Replay should not create a second order")
		var second response.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w2.Body, &second))
		require.Equal(t, first.ID, second.ID)

		// Only the first request reserved capacity.
		reserved, _ := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(1), reserved)
	})

	s.Run("Error case: same key with different payload is rejected", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		req := request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		}
		headers := map[string]string{"Idempotency-Key": uuid.New().String()}

		w1 := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL, req, token, headers)
		require.Equal(t, http.StatusCreated, w1.Code)

		req.Items[0].Quantity = 3
		w2 := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL, req, token, headers)
		require.Equal(t, http.StatusConflict, w2.Code, "Same key with a different payload must conflict")
	})

	s.Run("Error case: requesting more than remaining capacity is rejected", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Small Meetup", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 1000, 3)

		s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL,
			request.CreateOrderRequest{
				EventID:  eventID,
				Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
				Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
			}, token, map[string]string{"Idempotency-Key": uuid.New().String()})
		require.Equal(t, http.StatusConflict, w.Code, "Second order exceeds remaining capacity")

		// The failed attempt must not leak any reservation.
		reserved, _ := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(2), reserved)
	})

	s.Run("Error case: sold-out second line item rolls back the first item's claim", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Small Meetup", true)
		generalID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 1000, 50)
		vipID := dbtest.CreateTestTicketType(t, s.DB, eventID, "VIP", 9000, 1)

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL,
			request.CreateOrderRequest{
				EventID: eventID,
				Items: []request.OrderItemRequest{
					{TicketTypeID: generalID, Quantity: 2},
					{TicketTypeID: vipID, Quantity: 2},
				},
				Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
			}, token, map[string]string{"Idempotency-Key": uuid.New().String()})
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		generalReserved, _ := dbtest.LedgerCounts(t, s.DB, generalID)
		vipReserved, _ := dbtest.LedgerCounts(t, s.DB, vipID)
		require.Equal(t, int32(0), generalReserved, "The first item's claim must not survive the rollback")
		require.Equal(t, int32(0), vipReserved)
	})

	s.Run("Normal case: capacity rejection frees the idempotency key for a retry", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Small Meetup", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 1000, 1)
		key := uuid.New().String()

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL,
			request.CreateOrderRequest{
				EventID:  eventID,
				Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
				Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
			}, token, map[string]string{"Idempotency-Key": key})
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL,
			request.CreateOrderRequest{
				EventID:  eventID,
				Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
				Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
			}, token, map[string]string{"Idempotency-Key": key})
		require.Equal(t, http.StatusCreated, w.Code, "A definitively failed attempt must not pin its key")

		reserved, _ := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(1), reserved)
	})

	s.Run("Auth test - Unauthorized when no token supplied", func() {
		t := s.T()

		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL,
			request.CreateOrderRequest{
				EventID:  eventID,
				Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
				Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
			}, "", map[string]string{"Idempotency-Key": uuid.New().String()})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// TestConcurrentCreateOrder - Oversell protection under contention
// =============================================================================

func (s *OrderSuite) TestConcurrentCreateOrder() {
	s.Run("Concurrency: capacity+k single-unit orders reserve exactly capacity", func() {
		t := s.T()

		const capacity = 5
		const attempts = capacity + 3

		_, token := s.buyerToken(t, "storm@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Sold Out Show", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2000, capacity)

		body, err := json.Marshal(request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})
		require.NoError(t, err)

		codes := make(chan int, attempts)
		var wg sync.WaitGroup
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, ordersURL,
					body, token, map[string]string{"Idempotency-Key": uuid.New().String()})
				codes <- w.Code
			}()
		}
		wg.Wait()
		close(codes)

		var createdCount, conflictCount int
		for code := range codes {
			switch code {
			case http.StatusCreated:
				createdCount++
			case http.StatusConflict:
				conflictCount++
			default:
				t.Errorf("unexpected status code %d", code)
			}
		}
		require.Equal(t, capacity, createdCount, "Exactly capacity orders should win")
		require.Equal(t, attempts-capacity, conflictCount, "The rest should see a capacity conflict")

		reserved, issued := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(capacity), reserved, "Reserved must never exceed capacity")
		require.Equal(t, int32(0), issued)
	})
}

// =============================================================================
// TestPaymentConfirmation - Webhook reconciliation tests
// =============================================================================

func (s *OrderSuite) TestPaymentConfirmation() {
	s.Run("Normal case: successful confirmation issues tickets exactly once", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})
		require.NotNil(t, created.PaymentReference)

		ack := s.deliverWebhook(t, "evt_success_1", *created.PaymentReference, "succeeded")
		require.Equal(t, "applied", ack.Resolution)
		require.NotNil(t, ack.OrderID)
		require.Equal(t, created.ID, *ack.OrderID)

		require.Equal(t, "paid", s.orderStatus(t, created.ID))
		require.Equal(t, 2, s.countIssuedTickets(t, created.ID))

		reserved, issued := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(2), reserved)
		require.Equal(t, int32(2), issued)

		// Redelivery of the same event changes nothing.
		dup := s.deliverWebhook(t, "evt_success_1", *created.PaymentReference, "succeeded")
		require.Equal(t, "duplicate", dup.Resolution)
		require.Equal(t, 2, s.countIssuedTickets(t, created.ID))

		// A distinct event for an already settled order is acked as final.
		late := s.deliverWebhook(t, "evt_success_2", *created.PaymentReference, "failed")
		require.Equal(t, "already_final", late.Resolution)
		require.Equal(t, "paid", s.orderStatus(t, created.ID))
	})

	s.Run("Normal case: failed confirmation releases the reservation", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 3}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		ack := s.deliverWebhook(t, "evt_failed_1", *created.PaymentReference, "failed")
		require.Equal(t, "applied", ack.Resolution)

		require.Equal(t, "failed", s.orderStatus(t, created.ID))
		require.Equal(t, 0, s.countIssuedTickets(t, created.ID))

		reserved, issued := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(0), reserved, "Failed payment must return units to the pool")
		require.Equal(t, int32(0), issued)
	})

	s.Run("Normal case: failed confirmation releases every line item's units", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		generalID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)
		vipID := dbtest.CreateTestTicketType(t, s.DB, eventID, "VIP", 9000, 10)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID: eventID,
			Items: []request.OrderItemRequest{
				{TicketTypeID: generalID, Quantity: 2},
				{TicketTypeID: vipID, Quantity: 1},
			},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})
		require.Equal(t, int64(14000), created.TotalCents)

		generalReserved, _ := dbtest.LedgerCounts(t, s.DB, generalID)
		vipReserved, _ := dbtest.LedgerCounts(t, s.DB, vipID)
		require.Equal(t, int32(2), generalReserved)
		require.Equal(t, int32(1), vipReserved)

		ack := s.deliverWebhook(t, "evt_failed_multi_1", *created.PaymentReference, "failed")
		require.Equal(t, "applied", ack.Resolution)

		generalReserved, generalIssued := dbtest.LedgerCounts(t, s.DB, generalID)
		vipReserved, vipIssued := dbtest.LedgerCounts(t, s.DB, vipID)
		require.Equal(t, int32(0), generalReserved, "Every line item's units must return to the pool")
		require.Equal(t, int32(0), vipReserved)
		require.Equal(t, int32(0), generalIssued)
		require.Equal(t, int32(0), vipIssued)
	})

	s.Run("Normal case: paid multi-item order issues tickets across types", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		generalID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)
		vipID := dbtest.CreateTestTicketType(t, s.DB, eventID, "VIP", 9000, 10)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID: eventID,
			Items: []request.OrderItemRequest{
				{TicketTypeID: generalID, Quantity: 2},
				{TicketTypeID: vipID, Quantity: 1},
			},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		ack := s.deliverWebhook(t, "evt_paid_multi_1", *created.PaymentReference, "succeeded")
		require.Equal(t, "applied", ack.Resolution)
		require.Equal(t, 3, s.countIssuedTickets(t, created.ID))

		var perType int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM issued_tickets WHERE order_id = $1 AND ticket_type_id = $2",
			created.ID, vipID).Scan(&perType)
		require.NoError(t, err)
		require.Equal(t, 1, perType)

		_, generalIssued := dbtest.LedgerCounts(t, s.DB, generalID)
		_, vipIssued := dbtest.LedgerCounts(t, s.DB, vipID)
		require.Equal(t, int32(2), generalIssued)
		require.Equal(t, int32(1), vipIssued)
	})

	s.Run("Error case: unknown payment reference leaves no record and asks for redelivery", func() {
		t := s.T()

		w := s.deliverWebhookRaw(t, "evt_orphan_1", "pay_missing", "succeeded")
		require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())

		var n int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM reconciliation_records WHERE external_event_id = $1", "evt_orphan_1").Scan(&n)
		require.NoError(t, err)
		require.Equal(t, 0, n, "An unmatched event must not be absorbed into the ledger")
	})

	s.Run("Normal case: confirmation racing the payment reference write succeeds on redelivery", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})
		paymentRef := *created.PaymentReference

		// Simulate the provider confirming before the reference write
		// lands: detach it, deliver, then restore and redeliver the same
		// event.
		_, err := s.DB.Exec(context.Background(),
			"UPDATE orders SET payment_reference = NULL WHERE id = $1", created.ID)
		require.NoError(t, err)

		w := s.deliverWebhookRaw(t, "evt_race_1", paymentRef, "succeeded")
		require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
		require.Equal(t, "pending", s.orderStatus(t, created.ID))
		require.Equal(t, 0, s.countIssuedTickets(t, created.ID))

		_, err = s.DB.Exec(context.Background(),
			"UPDATE orders SET payment_reference = $2 WHERE id = $1", created.ID, paymentRef)
		require.NoError(t, err)

		ack := s.deliverWebhook(t, "evt_race_1", paymentRef, "succeeded")
		require.Equal(t, "applied", ack.Resolution, "Redelivery must not resolve as a duplicate")
		require.Equal(t, "paid", s.orderStatus(t, created.ID))
		require.Equal(t, 2, s.countIssuedTickets(t, created.ID))
	})

	s.Run("Normal case: paid order queues a notification and it gets dispatched", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})
		s.deliverWebhook(t, "evt_notify_1", *created.PaymentReference, "succeeded")

		var queued int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM notification_jobs WHERE status = 'queued'").Scan(&queued)
		require.NoError(t, err)
		require.Equal(t, 1, queued)

		sent, err := s.Commands.Notification.DispatchDue(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, sent)

		var remaining int
		err = s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM notification_jobs WHERE status = 'sent'").Scan(&remaining)
		require.NoError(t, err)
		require.Equal(t, 1, remaining)
	})
}

// =============================================================================
// TestExpireOverdueOrders - Pending order reaper tests
// =============================================================================

func (s *OrderSuite) TestExpireOverdueOrders() {
	s.Run("Normal case: overdue pending order expires and frees capacity", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 10)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		// Push the order past the payment TTL.
		_, err := s.DB.Exec(context.Background(),
			"UPDATE orders SET created_at = created_at - interval '1 hour' WHERE id = $1", created.ID)
		require.NoError(t, err)

		expired, err := s.Commands.Maintenance.ExpireOverdueOrders(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, expired)

		require.Equal(t, "expired", s.orderStatus(t, created.ID))
		reserved, issued := dbtest.LedgerCounts(t, s.DB, ticketTypeID)
		require.Equal(t, int32(0), reserved)
		require.Equal(t, int32(0), issued)

		// A confirmation arriving after expiry must not resurrect the order.
		ack := s.deliverWebhook(t, "evt_late_1", *created.PaymentReference, "succeeded")
		require.Equal(t, "already_final", ack.Resolution)
		require.Equal(t, "expired", s.orderStatus(t, created.ID))
		require.Equal(t, 0, s.countIssuedTickets(t, created.ID))
	})

	s.Run("Normal case: fresh pending orders are left alone", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 10)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		expired, err := s.Commands.Maintenance.ExpireOverdueOrders(context.Background())
		require.NoError(t, err)
		require.Equal(t, 0, expired)
		require.Equal(t, "pending", s.orderStatus(t, created.ID))
	})
}

// =============================================================================
// TestGetOrder - Order detail API tests
// =============================================================================

func (s *OrderSuite) TestGetOrder() {
	s.Run("Normal case: buyer sees their own order with items", func() {
		t := s.T()

		buyerID, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 2}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var actual response.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &actual))

		expected := &response.OrderResponse{
			ID:            created.ID,
			BuyerID:       buyerID,
			EventID:       eventID,
			EventName:     "Gopher Conference",
			Status:        "pending",
			TotalCents:    5000,
			Currency:      "USD",
			AttendeeName:  "Ada Lovelace",
			AttendeeEmail: "ada@example.com",
			Items: []response.OrderItem{
				{TicketTypeID: ticketTypeID, TicketTypeName: "General", Quantity: 2, UnitPriceCents: 2500},
			},
			Tickets: []response.IssuedTicket{},
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(response.OrderResponse{}, "PaymentReference", "PaymentHandle", "CreatedAt", "UpdatedAt"),
			cmpopts.EquateEmpty(),
		}
		if diff := cmp.Diff(expected, &actual, opts...); diff != "" {
			t.Errorf("Order response mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("Error case: another buyer's order is not found", func() {
		t := s.T()

		_, ownerToken := s.buyerToken(t, "owner@example.com")
		_, otherToken := s.buyerToken(t, "other@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		created := s.createOrder(t, ownerToken, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 1}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+created.ID.String(), nil, otherToken)
		require.Equal(t, http.StatusNotFound, w.Code, "Order existence must be hidden from other buyers")
	})
}

// =============================================================================
// TestTicketTypeAvailability - Public availability listing tests
// =============================================================================

func (s *OrderSuite) TestTicketTypeAvailability() {
	s.Run("Normal case: remaining reflects reservations", func() {
		t := s.T()

		_, token := s.buyerToken(t, "buyer@example.com")
		eventID := dbtest.CreateTestEvent(t, s.DB, "Gopher Conference", true)
		ticketTypeID := dbtest.CreateTestTicketType(t, s.DB, eventID, "General", 2500, 50)

		s.createOrder(t, token, request.CreateOrderRequest{
			EventID:  eventID,
			Items:    []request.OrderItemRequest{{TicketTypeID: ticketTypeID, Quantity: 4}},
			Attendee: request.AttendeeRequest{Name: "Ada Lovelace", Email: "ada@example.com"},
		})

		url := fmt.Sprintf(ticketTypesURL, eventID.String())
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var listed []*response.TicketTypeResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &listed))
		require.Len(t, listed, 1)

		expected := &response.TicketTypeResponse{
			ID:         ticketTypeID,
			EventID:    eventID,
			Name:       "General",
			PriceCents: 2500,
			Capacity:   50,
			Remaining:  46,
			Active:     true,
		}
		if diff := cmp.Diff(expected, listed[0]); diff != "" {
			t.Errorf("Availability mismatch (-want +got):\n%s", diff)
		}
	})
}
