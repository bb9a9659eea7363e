// Package mock implements an in-memory payment.Provider for development and
// tests. Every checkout succeeds on verification.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/Fmukanda/travelapp/internal/payment"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// Provider records initialized transactions in memory.
type Provider struct {
	mu  sync.Mutex
	txs map[string]payment.InitializeRequest
}

// NewProvider creates a mock payment provider.
func NewProvider() *Provider {
	return &Provider{
		txs: make(map[string]payment.InitializeRequest),
	}
}

// Name identifies the gateway.
func (p *Provider) Name() string {
	return "mock"
}

// InitializePayment records the transaction and returns a fake checkout URL.
func (p *Provider) InitializePayment(_ context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.txs[req.TxRef] = req

	return &payment.InitializeResult{
		CheckoutURL:  fmt.Sprintf("https://checkout.mock.local/pay/%s", req.TxRef),
		ProviderTxID: req.TxRef,
	}, nil
}

// VerifyPayment reports success for any transaction it has seen.
func (p *Provider) VerifyPayment(_ context.Context, txRef string) (*payment.VerifyResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	req, ok := p.txs[txRef]
	if !ok {
		return nil, apperrors.NotFound("transaction", txRef)
	}

	return &payment.VerifyResult{
		Status:   payment.TxStatusSuccess,
		Amount:   req.Amount,
		Currency: req.Currency,
	}, nil
}
