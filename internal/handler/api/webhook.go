package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"ticketing-engine/internal/gateway/payment"
	reqdto "ticketing-engine/internal/handler/dto/request"
	resdto "ticketing-engine/internal/handler/dto/response"
	"ticketing-engine/internal/handler/httperr"
	"ticketing-engine/internal/pkg/errs"
	"ticketing-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Webhook-Signature"

var errBadSignature = errs.New("webhook signature mismatch")

type WebhookHandler struct {
	cmds   commands.ReconciliationCommands
	signer *payment.Signer
}

func NewWebhookHandler(cmds commands.ReconciliationCommands, signer *payment.Signer) *WebhookHandler {
	return &WebhookHandler{cmds: cmds, signer: signer}
}

// @Summary Payment confirmation webhook
// @Description Receive a payment confirmation event from the provider
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "HMAC-SHA256 of the raw body"
// @Param request body reqdto.PaymentWebhookRequest true "Confirmation event"
// @Success 200 {object} resdto.WebhookAckResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 503 {object} map[string]string "Reference not matched yet; redeliver"
// @Router /webhooks/payment [post]
func (h *WebhookHandler) PaymentConfirmation(c *gin.Context) {
	// The signature covers the raw bytes, so read before binding.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Failed to read request body", nil)
		return
	}
	if !h.signer.Verify(body, c.GetHeader(signatureHeader)) {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadSignature, "Invalid signature", nil)
		return
	}

	var req reqdto.PaymentWebhookRequest
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid webhook payload", nil)
		return
	}

	result, err := h.cmds.HandleConfirmation(c.Request.Context(), req.ToConfirmation())
	if err != nil {
		if errors.Is(err, commands.ErrInvalidConfirmation) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid confirmation event", nil)
			return
		}
		if errors.Is(err, commands.ErrUnknownPaymentReference) {
			// No record was committed; the provider redelivers until the
			// reference exists or its retry budget runs out.
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Unknown payment reference", nil)
			return
		}
		// A 5xx makes the provider redeliver; the reconciliation record
		// keeps the retry harmless.
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to process event", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.WebhookAckResponse{
		Received:   true,
		Resolution: result.Resolution,
		OrderID:    result.OrderID,
	})
}
