// Package chapa implements the payment.Provider interface against the Chapa
// transaction API.
package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Fmukanda/travelapp/internal/payment"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
	"github.com/Fmukanda/travelapp/pkg/httpclient"
)

// Config holds Chapa API configuration.
type Config struct {
	BaseURL   string
	SecretKey string
}

// Client calls the Chapa transaction API through a retrying HTTP client
// behind a circuit breaker.
type Client struct {
	cfg    Config
	http   *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewClient creates a Chapa API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("chapa"), logger)
	return &Client{
		cfg:    cfg,
		http:   cb,
		logger: logger,
	}
}

// Name identifies the gateway.
func (c *Client) Name() string {
	return "chapa"
}

type initializePayload struct {
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	TxRef       string            `json:"tx_ref"`
	CallbackURL string            `json:"callback_url,omitempty"`
	ReturnURL   string            `json:"return_url,omitempty"`
	Custom      map[string]string `json:"customization,omitempty"`
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	CheckoutURL string `json:"checkout_url"`
	TxRef       string `json:"tx_ref"`
}

type verifyData struct {
	Status   string `json:"status"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// InitializePayment starts a Chapa checkout session.
func (c *Client) InitializePayment(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	payload := initializePayload{
		Amount:      minorToDecimal(req.Amount),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	}
	if req.Description != "" {
		payload.Custom = map[string]string{
			"title":       "Travel Booking Payment",
			"description": req.Description,
		}
	}

	var parsed apiResponse
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", payload, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "success" {
		return nil, apperrors.PaymentFailed(parsed.Message)
	}

	var data initializeData
	if err := json.Unmarshal(parsed.Data, &data); err != nil {
		return nil, fmt.Errorf("decode chapa initialize data: %w", err)
	}

	c.logger.DebugContext(ctx, "chapa checkout initialized",
		slog.String("tx_ref", req.TxRef),
	)

	return &payment.InitializeResult{
		CheckoutURL:  data.CheckoutURL,
		ProviderTxID: data.TxRef,
	}, nil
}

// VerifyPayment fetches the state of a Chapa transaction.
func (c *Client) VerifyPayment(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
	var parsed apiResponse
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+txRef, nil, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "success" {
		return nil, apperrors.PaymentFailed(parsed.Message)
	}

	var data verifyData
	if err := json.Unmarshal(parsed.Data, &data); err != nil {
		return nil, fmt.Errorf("decode chapa verify data: %w", err)
	}

	return &payment.VerifyResult{
		Status:   mapTxStatus(data.Status),
		Amount:   decimalToMinor(data.Amount),
		Currency: data.Currency,
	}, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, out *apiResponse) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode chapa request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build chapa request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("chapa %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return apperrors.PaymentFailed(fmt.Sprintf("chapa returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode chapa response: %w", err)
	}

	return nil
}

// mapTxStatus normalizes Chapa's transaction states to the provider vocabulary.
func mapTxStatus(s string) string {
	switch s {
	case "success":
		return payment.TxStatusSuccess
	case "failed", "cancelled":
		return payment.TxStatusFailed
	default:
		return payment.TxStatusPending
	}
}

// minorToDecimal renders minor-unit amounts the way the API expects, e.g.
// 30000 -> "300.00".
func minorToDecimal(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

// decimalToMinor parses an API decimal amount back into minor units.
func decimalToMinor(s string) int64 {
	var major, minor int64
	if _, err := fmt.Sscanf(s, "%d.%2d", &major, &minor); err != nil {
		if _, err := fmt.Sscanf(s, "%d", &major); err != nil {
			return 0
		}
	}
	return major*100 + minor
}
