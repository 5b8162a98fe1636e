//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"ticketing-engine/internal/handler/api"
	resdto "ticketing-engine/internal/handler/dto/response"
	"ticketing-engine/internal/usecase/commands"
	"ticketing-engine/internal/usecase/queries"
	"ticketing-engine/tests/common/httptest"
	commandsmock "ticketing-engine/tests/mock/commands"
	queriesmock "ticketing-engine/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OrderHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockCmds    *commandsmock.MockOrderCommands
	mockOrderQ  *queriesmock.MockOrderQueries
	mockTicketQ *queriesmock.MockTicketTypeQueries
	handler     *api.OrderHandler
	buyerID     uuid.UUID
}

func (s *OrderHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCmds = commandsmock.NewMockOrderCommands(s.mockCtrl)
	s.mockOrderQ = queriesmock.NewMockOrderQueries(s.mockCtrl)
	s.mockTicketQ = queriesmock.NewMockTicketTypeQueries(s.mockCtrl)
	s.handler = api.NewOrderHandler(s.mockCmds, s.mockOrderQ, s.mockTicketQ)
	s.buyerID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.buyerID)
		c.Set("user_role", "buyer")
		c.Next()
	}

	s.router.POST("/orders", authMiddleware, s.handler.CreateOrder)
	s.router.GET("/orders", authMiddleware, s.handler.ListOrders)
	s.router.GET("/orders/:id", authMiddleware, s.handler.GetOrder)
	s.router.GET("/events/:id/ticket-types", s.handler.ListTicketTypes)
}

func (s *OrderHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOrderHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(OrderHandlerTestSuite))
}

func (s *OrderHandlerTestSuite) validCreateBody() map[string]any {
	return map[string]any{
		"event_id": uuid.New().String(),
		"items": []map[string]any{
			{"ticket_type_id": uuid.New().String(), "quantity": 2},
		},
		"attendee": map[string]any{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
		},
	}
}

func (s *OrderHandlerTestSuite) orderView() *queries.OrderView {
	return &queries.OrderView{
		ID:        uuid.New(),
		BuyerID:   s.buyerID,
		EventID:   uuid.New(),
		EventName: "GopherCon",
		Status:    "pending",
		TotalCents: 5000,
		Currency:  "USD",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *OrderHandlerTestSuite) TestCreateOrder() {
	s.Run("creates order", func() {
		view := s.orderView()
		s.mockCmds.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any(), s.buyerID, gomock.Any()).
			Return(&commands.CreateOrderResult{Order: view, PaymentHandle: "https://pay.example/x"}, nil)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/orders",
			s.validCreateBody(), "token", map[string]string{"Idempotency-Key": uuid.New().String()})

		var resp resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
		s.Equal(view.ID, resp.ID)
		s.Equal("https://pay.example/x", resp.PaymentHandle)
	})

	s.Run("replay returns 200", func() {
		view := s.orderView()
		s.mockCmds.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any(), s.buyerID, gomock.Any()).
			Return(&commands.CreateOrderResult{Order: view, IsReplayed: true}, nil)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/orders",
			s.validCreateBody(), "token", map[string]string{"Idempotency-Key": uuid.New().String()})

		var resp resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(view.ID, resp.ID)
	})

	s.Run("missing idempotency key", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/orders", s.validCreateBody(), "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Idempotency-Key")
	})

	s.Run("missing auth", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/orders", s.validCreateBody(), "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("sold out maps to conflict", func() {
		s.mockCmds.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any(), s.buyerID, gomock.Any()).
			Return(nil, commands.ErrCapacityExceeded)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/orders",
			s.validCreateBody(), "token", map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Not enough tickets")
	})

	s.Run("unknown event maps to not found", func() {
		s.mockCmds.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any(), s.buyerID, gomock.Any()).
			Return(nil, commands.ErrEventNotFound)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/orders",
			s.validCreateBody(), "token", map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Event not found")
	})

	s.Run("gateway failure maps to bad gateway", func() {
		s.mockCmds.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any(), s.buyerID, gomock.Any()).
			Return(nil, commands.ErrPaymentRequestFailed)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/orders",
			s.validCreateBody(), "token", map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadGateway, "Payment")
	})

	s.Run("invalid body", func() {
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/orders",
			map[string]any{"event_id": "nope"}, "token", map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})
}

func (s *OrderHandlerTestSuite) TestGetOrder() {
	s.Run("returns own order", func() {
		view := s.orderView()
		s.mockOrderQ.EXPECT().
			GetByID(gomock.Any(), s.buyerID, view.ID).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/"+view.ID.String(), nil, "token")

		var resp resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(view.ID, resp.ID)
	})

	s.Run("other buyer's order is not found", func() {
		id := uuid.New()
		s.mockOrderQ.EXPECT().
			GetByID(gomock.Any(), s.buyerID, id).
			Return(nil, queries.ErrOrderNotFound)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/"+id.String(), nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Order not found")
	})

	s.Run("invalid id", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/not-a-uuid", nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid id")
	})
}

func (s *OrderHandlerTestSuite) TestListOrders() {
	s.Run("lists own orders", func() {
		items := []*queries.OrderListItem{
			{ID: uuid.New(), EventName: "GopherCon", Status: "paid", TotalCents: 5000, Currency: "USD"},
			{ID: uuid.New(), EventName: "GopherCon", Status: "pending", TotalCents: 2500, Currency: "USD"},
		}
		s.mockOrderQ.EXPECT().
			ListByBuyer(gomock.Any(), s.buyerID).
			Return(items, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders", nil, "token")

		var resp []*resdto.OrderListResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp, 2)
		s.Equal(items[0].ID, resp[0].ID)
	})
}

func (s *OrderHandlerTestSuite) TestListTicketTypes() {
	s.Run("lists availability without auth", func() {
		eventID := uuid.New()
		items := []*queries.TicketTypeAvailability{
			{ID: uuid.New(), EventID: eventID, Name: "GA", PriceCents: 2500, Capacity: 100, Remaining: 40, Active: true},
		}
		s.mockTicketQ.EXPECT().
			ListByEvent(gomock.Any(), eventID).
			Return(items, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/events/"+eventID.String()+"/ticket-types", nil, "")

		var resp []*resdto.TicketTypeResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp, 1)
		s.Equal(int32(40), resp[0].Remaining)
	})
}
