//go:build unit

package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"ticketing-engine/internal/gateway/payment"
	"ticketing-engine/internal/handler/api"
	resdto "ticketing-engine/internal/handler/dto/response"
	"ticketing-engine/internal/usecase/commands"
	"ticketing-engine/tests/common/httptest"
	commandsmock "ticketing-engine/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testWebhookSecret = "test-webhook-secret"

type WebhookHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	mockCtrl *gomock.Controller
	mockCmds *commandsmock.MockReconciliationCommands
	signer   *payment.Signer
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCmds = commandsmock.NewMockReconciliationCommands(s.mockCtrl)
	s.signer = payment.NewSigner(testWebhookSecret)
	handler := api.NewWebhookHandler(s.mockCmds, s.signer)

	s.router.POST("/webhooks/payment", handler.PaymentConfirmation)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) signedRequest(body []byte) map[string]string {
	return map[string]string{"X-Webhook-Signature": s.signer.Sign(body)}
}

func (s *WebhookHandlerTestSuite) eventBody() []byte {
	body, err := json.Marshal(map[string]any{
		"external_event_id": "evt_1",
		"payment_reference": "pay_1",
		"status":            "succeeded",
		"amount":            "50.00",
		"currency":          "USD",
	})
	s.Require().NoError(err)
	return body
}

func (s *WebhookHandlerTestSuite) TestPaymentConfirmation() {
	s.Run("applies confirmation", func() {
		orderID := uuid.New()
		s.mockCmds.EXPECT().
			HandleConfirmation(gomock.Any(), gomock.Any()).
			Return(&commands.ReconcileResult{Resolution: commands.ResolutionApplied, OrderID: &orderID, TicketsIssued: 2}, nil)

		body := s.eventBody()
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payment",
			body, "", s.signedRequest(body))

		var resp resdto.WebhookAckResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.True(resp.Received)
		s.Equal(commands.ResolutionApplied, resp.Resolution)
		s.Equal(orderID, *resp.OrderID)
	})

	s.Run("duplicate event still acknowledged", func() {
		s.mockCmds.EXPECT().
			HandleConfirmation(gomock.Any(), gomock.Any()).
			Return(&commands.ReconcileResult{Resolution: commands.ResolutionDuplicate}, nil)

		body := s.eventBody()
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payment",
			body, "", s.signedRequest(body))

		var resp resdto.WebhookAckResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(commands.ResolutionDuplicate, resp.Resolution)
	})

	s.Run("unmatched reference answers retryable status", func() {
		s.mockCmds.EXPECT().
			HandleConfirmation(gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrUnknownPaymentReference)

		body := s.eventBody()
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payment",
			body, "", s.signedRequest(body))

		httptest.AssertErrorResponse(s.T(), w, http.StatusServiceUnavailable, "Unknown payment reference")
	})

	s.Run("missing signature rejected", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/webhooks/payment", s.eventBody(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid signature")
	})

	s.Run("wrong signature rejected", func() {
		body := s.eventBody()
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payment",
			body, "", map[string]string{"X-Webhook-Signature": payment.NewSigner("other").Sign(body)})
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid signature")
	})

	s.Run("tampered body rejected", func() {
		body := s.eventBody()
		sig := s.signer.Sign(body)
		tampered := []byte(`{"external_event_id":"evt_1","payment_reference":"pay_1","status":"failed"}`)
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payment",
			tampered, "", map[string]string{"X-Webhook-Signature": sig})
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid signature")
	})

	s.Run("malformed payload with valid signature", func() {
		body := []byte(`{"status":"succeeded"}`)
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/webhooks/payment",
			body, "", s.signedRequest(body))
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid webhook payload")
	})
}
