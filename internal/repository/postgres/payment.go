package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/pkg/database"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// PaymentRepository implements repository.PaymentRepository using PostgreSQL.
type PaymentRepository struct {
	pool database.DBTX
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool database.DBTX) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, booking_id, amount, currency, customer_email, first_name, last_name,
	provider_tx_id, checkout_url, status, paid_at, created_at, updated_at`

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.BookingID,
		p.Amount,
		p.Currency,
		p.CustomerEmail,
		p.FirstName,
		p.LastName,
		p.ProviderTxID,
		p.CheckoutURL,
		p.Status,
		p.PaidAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("payment", "provider_tx_id", p.ProviderTxID)
		}
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByProviderTxID retrieves a payment by the gateway transaction reference.
func (r *PaymentRepository) GetByProviderTxID(ctx context.Context, txID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_tx_id = $1`
	return r.getOne(ctx, query, txID)
}

// GetByBookingID retrieves the most recent payment for a booking.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.getOne(ctx, query, bookingID)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	var p domain.Payment
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.Currency,
		&p.CustomerEmail,
		&p.FirstName,
		&p.LastName,
		&p.ProviderTxID,
		&p.CheckoutURL,
		&p.Status,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("payment", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &p, nil
}

// UpdateStatus changes the status of a payment, recording paid_at for
// completed payments.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status string, paidAt *time.Time) error {
	query := `
		UPDATE payments
		SET status = $1, paid_at = COALESCE($2, paid_at), updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, status, paidAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("payment", id)
	}

	return nil
}
