// Package gateway talks to the hosted payment gateway: it opens orders for
// checkout and refunds stray payments.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/config"
	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/pkg/clients"
)

const (
	maxRetries    = 2
	retryInterval = 200 * time.Millisecond
)

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type refundRequest struct {
	Amount int64 `json:"amount,omitempty"`
}

type refundResponse struct {
	ID string `json:"id"`
}

type Client struct {
	url      string
	keyID    string
	secret   string
	currency string
	client   clients.HTTPClientI
	backoff  func() retry.Backoff
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		url:      cfg.GatewayAddress,
		keyID:    cfg.GatewayKeyID,
		secret:   cfg.GatewayKeySecret,
		currency: cfg.Currency,
		client:   client,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxRetries, retry.NewExponential(retryInterval))
		},
	}
}

// minorUnits converts a two-place amount to the integer paise/cents the
// gateway expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

func fromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	creds := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.secret))
	h.Set("Authorization", "Basic "+creds)
	return h
}

// post sends body and decodes a 2xx answer into out. Transport failures and
// 5xx answers are retried; everything that still fails is reported as an
// upstream gateway error.
func (c *Client) post(ctx context.Context, operation, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		status, resp, err := c.client.Post(ctx, c.url+path, c.headers(), payload)
		if err != nil {
			zap.L().Warn("gateway request failed", zap.String("operation", operation), zap.Error(err))
			return retry.RetryableError(err)
		}
		switch {
		case status >= http.StatusInternalServerError:
			return retry.RetryableError(fmt.Errorf("gateway answered %d", status))
		case status < http.StatusOK || status >= http.StatusMultipleChoices:
			return fmt.Errorf("gateway rejected %s with %d: %s", operation, status, resp)
		}
		return json.Unmarshal(resp, out)
	})
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(operation, "error").Inc()
		zap.L().Error("gateway call failed", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrUpstreamGateway, err)
	}
	metrics.GatewayRequests.WithLabelValues(operation, "ok").Inc()
	return nil
}

func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string, notes map[string]string) (*domain.GatewayOrder, error) {
	var resp orderResponse
	req := orderRequest{Amount: minorUnits(amount), Currency: c.currency, Receipt: receipt, Notes: notes}
	if err := c.post(ctx, "create_order", "/v1/orders", req, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: order without id", domain.ErrUpstreamGateway)
	}
	return &domain.GatewayOrder{
		ID:       resp.ID,
		Amount:   fromMinorUnits(resp.Amount),
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
	}, nil
}

// InitiateRefund refunds a captured payment, fully when amount is nil.
func (c *Client) InitiateRefund(ctx context.Context, paymentID string, amount *decimal.Decimal) (string, error) {
	var req refundRequest
	if amount != nil {
		req.Amount = minorUnits(*amount)
	}
	var resp refundResponse
	if err := c.post(ctx, "refund", "/v1/payments/"+paymentID+"/refund", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
