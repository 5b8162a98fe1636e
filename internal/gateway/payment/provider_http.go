package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var _ Gateway = (*httpGateway)(nil)

// httpGateway talks to an external payment provider over its REST API.
type httpGateway struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewHTTPGateway(cfg config.PaymentConfig) Gateway {
	return &httpGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		hc: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type createPaymentBody struct {
	OrderID  string          `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Memo     string          `json:"memo,omitempty"`
}

type createPaymentResponse struct {
	PaymentReference string `json:"payment_reference"`
	CheckoutURL      string `json:"checkout_url"`
}

func (g *httpGateway) CreatePaymentRequest(ctx context.Context, req *PaymentRequest) (*PaymentIntent, error) {
	body, err := json.Marshal(createPaymentBody{
		OrderID:  req.OrderID.String(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Memo:     req.Memo,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode payment request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payment-requests", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build payment request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("X-Request-Datetime", time.Now().UTC().Format(time.RFC3339))

	resp, err := g.hc.Do(httpReq)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "payment request failed"), ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to read provider response"), ErrGatewayUnavailable)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, errs.Mark(errs.Newf("provider returned %d", resp.StatusCode), ErrGatewayUnavailable)
	case resp.StatusCode >= 400:
		return nil, errs.Mark(errs.Newf("provider returned %d: %s", resp.StatusCode, respBody), ErrGatewayRejected)
	}

	var out createPaymentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to decode provider response"), ErrGatewayUnavailable)
	}
	if out.PaymentReference == "" {
		return nil, errs.Mark(errs.New("provider response missing payment_reference"), ErrGatewayUnavailable)
	}

	return &PaymentIntent{
		PaymentReference: out.PaymentReference,
		ClientHandle:     out.CheckoutURL,
	}, nil
}
