package domain

import "time"

// Payment status constants.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
)

// Payment tracks a checkout attempt for a booking against the payment
// gateway. Amount always equals the booking's derived total price.
type Payment struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"booking_id"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	CustomerEmail string     `json:"customer_email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	ProviderTxID  string     `json:"provider_tx_id"`
	CheckoutURL   string     `json:"checkout_url,omitempty"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ValidPaymentStatuses returns all valid payment statuses.
func ValidPaymentStatuses() []string {
	return []string{
		PaymentStatusPending,
		PaymentStatusProcessing,
		PaymentStatusCompleted,
		PaymentStatusFailed,
	}
}
