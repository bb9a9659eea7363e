// Package payment abstracts the payment gateway so the service layer can run
// against the real Chapa API or an in-memory mock.
package payment

import "context"

// Gateway transaction states as reported by VerifyPayment.
const (
	TxStatusPending = "pending"
	TxStatusSuccess = "success"
	TxStatusFailed  = "failed"
)

// InitializeRequest holds the parameters for starting a checkout session.
// Amount is in minor currency units.
type InitializeRequest struct {
	TxRef       string
	Amount      int64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	ReturnURL   string
	CallbackURL string
	Description string
}

// InitializeResult is the outcome of a successful checkout initialization.
type InitializeResult struct {
	CheckoutURL  string
	ProviderTxID string
}

// VerifyResult is the gateway's view of a transaction.
type VerifyResult struct {
	Status   string
	Amount   int64
	Currency string
}

// Provider is a payment gateway integration.
type Provider interface {
	// Name identifies the gateway in logs and stored records.
	Name() string

	// InitializePayment starts a checkout session and returns the URL the
	// customer completes payment at.
	InitializePayment(ctx context.Context, req InitializeRequest) (*InitializeResult, error)

	// VerifyPayment fetches the current state of a transaction by its
	// reference.
	VerifyPayment(ctx context.Context, txRef string) (*VerifyResult, error)
}
