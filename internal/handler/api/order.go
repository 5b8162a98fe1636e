package api

import (
	"errors"
	"net/http"

	reqdto "ticketing-engine/internal/handler/dto/request"
	resdto "ticketing-engine/internal/handler/dto/response"
	"ticketing-engine/internal/handler/httperr"
	"ticketing-engine/internal/handler/middleware"
	"ticketing-engine/internal/pkg/errs"
	"ticketing-engine/internal/usecase/commands"
	"ticketing-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingAuthContext = errs.New("missing auth context")

type OrderHandler struct {
	cmds      commands.OrderCommands
	orderQ    queries.OrderQueries
	ticketTyQ queries.TicketTypeQueries
}

func NewOrderHandler(cmds commands.OrderCommands, orderQ queries.OrderQueries, ticketTyQ queries.TicketTypeQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, orderQ: orderQ, ticketTyQ: ticketTyQ}
}

// @Summary Create order
// @Description Reserve tickets and initiate payment for them
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 201 {object} resdto.OrderResponse
// @Success 200 {object} resdto.OrderResponse "Replayed from idempotency key"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	idempotencyKey, err := h.getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid Idempotency-Key header", nil)
		return
	}

	var req reqdto.CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.CreateOrder(c.Request.Context(), req, buyerID, idempotencyKey)
	if err != nil {
		h.abortCreateOrderError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromOrderView(result.Order, result.PaymentHandle))
}

func (h *OrderHandler) abortCreateOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrEventNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Event not found", nil)
	case errors.Is(err, commands.ErrTicketTypeNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Ticket type not found", nil)
	case errors.Is(err, commands.ErrCapacityExceeded):
		httperr.AbortWithError(c, http.StatusConflict, err, "Not enough tickets remaining", nil)
	case errors.Is(err, commands.ErrDuplicateOrder):
		httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency key reused with different request", nil)
	case errors.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is currently being processed", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Order validation failed", nil)
	case errors.Is(err, commands.ErrPaymentRequestFailed):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment could not be initiated", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

// @Summary Get order
// @Description Get own order by ID, including issued tickets once paid
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.orderQ.GetByID(c.Request.Context(), buyerID, id)
	if err != nil {
		if errors.Is(err, queries.ErrOrderNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load order", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderView(view, ""))
}

// @Summary List orders
// @Description List own orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.OrderListResponse
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	items, err := h.orderQ.ListByBuyer(c.Request.Context(), buyerID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list orders", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderList(items))
}

// @Summary List ticket types
// @Description List an event's ticket types with remaining availability
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {array} resdto.TicketTypeResponse
// @Failure 400 {object} map[string]string
// @Router /events/{id}/ticket-types [get]
func (h *OrderHandler) ListTicketTypes(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	items, err := h.ticketTyQ.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list ticket types", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTicketTypeList(items))
}

func (h *OrderHandler) getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("Idempotency-Key")
	if raw == "" {
		return uuid.Nil, errs.New("Idempotency-Key header is required")
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "Idempotency-Key must be a UUID")
	}
	return key, nil
}
