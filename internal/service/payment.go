package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/event"
	"github.com/Fmukanda/travelapp/internal/payment"
	"github.com/Fmukanda/travelapp/internal/policy"
	"github.com/Fmukanda/travelapp/internal/repository"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// PaymentService drives the checkout flow for bookings through a payment
// gateway. The charged amount always equals the booking's stored total.
type PaymentService struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	provider payment.Provider
	producer *event.Producer
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	provider payment.Provider,
	producer *event.Producer,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// InitializePaymentInput holds the parameters for starting a checkout.
type InitializePaymentInput struct {
	BookingID string
	Email     string
	FirstName string
	LastName  string
	ReturnURL string
}

// WebhookEvent is the gateway's asynchronous payment notification.
type WebhookEvent struct {
	Event  string `json:"event"`
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

// InitializePayment creates a payment for a booking and opens a checkout
// session with the gateway. Only the booking's guest may pay.
func (s *PaymentService) InitializePayment(ctx context.Context, actor policy.Actor, input InitializePaymentInput) (*domain.Payment, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if input.BookingID == "" {
		return nil, apperrors.InvalidInput("booking_id is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking for payment: %w", err)
	}
	if booking.GuestID != actor.ID {
		return nil, apperrors.Forbidden("only the booking's guest may pay for it")
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, apperrors.InvalidInput("cannot pay for a cancelled booking")
	}

	now := time.Now().UTC()
	pay := &domain.Payment{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		Amount:        booking.TotalPrice,
		Currency:      booking.Currency,
		CustomerEmail: input.Email,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, initErr := s.provider.InitializePayment(ctx, payment.InitializeRequest{
		TxRef:       pay.ID,
		Amount:      pay.Amount,
		Currency:    pay.Currency,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		ReturnURL:   input.ReturnURL,
		Description: fmt.Sprintf("Payment for booking %s", booking.ID),
	})
	if initErr != nil {
		pay.Status = domain.PaymentStatusFailed
		if err := s.payments.Create(ctx, pay); err != nil {
			return nil, fmt.Errorf("record failed payment: %w", err)
		}
		s.logger.ErrorContext(ctx, "payment initialization failed",
			slog.String("payment_id", pay.ID),
			slog.String("booking_id", booking.ID),
			slog.String("error", initErr.Error()),
		)
		return nil, apperrors.PaymentFailed("payment initialization failed")
	}

	pay.Status = domain.PaymentStatusProcessing
	pay.CheckoutURL = result.CheckoutURL
	pay.ProviderTxID = result.ProviderTxID

	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.InfoContext(ctx, "payment initialized",
		slog.String("payment_id", pay.ID),
		slog.String("booking_id", booking.ID),
		slog.Int64("amount", pay.Amount),
		slog.String("provider", s.provider.Name()),
	)

	return pay, nil
}

// VerifyPayment reconciles a payment with the gateway's transaction state.
// Completed payments get a paid timestamp and emit payment.completed.
func (s *PaymentService) VerifyPayment(ctx context.Context, txRef string) (*domain.Payment, error) {
	if txRef == "" {
		return nil, apperrors.InvalidInput("tx_ref is required")
	}

	pay, err := s.payments.GetByProviderTxID(ctx, txRef)
	if err != nil {
		return nil, fmt.Errorf("get payment for verify: %w", err)
	}
	if pay.Status == domain.PaymentStatusCompleted {
		return pay, nil
	}

	result, err := s.provider.VerifyPayment(ctx, txRef)
	if err != nil {
		return nil, fmt.Errorf("verify payment with provider: %w", err)
	}

	switch result.Status {
	case payment.TxStatusSuccess:
		return s.complete(ctx, pay)
	case payment.TxStatusFailed:
		if err := s.payments.UpdateStatus(ctx, pay.ID, domain.PaymentStatusFailed, nil); err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		pay.Status = domain.PaymentStatusFailed
		return pay, nil
	default:
		return pay, nil
	}
}

// HandleWebhook processes the gateway's asynchronous notification. It is
// idempotent: repeated deliveries of a completed charge are no-ops.
func (s *PaymentService) HandleWebhook(ctx context.Context, evt WebhookEvent) error {
	if evt.Event != "charge.completed" {
		s.logger.DebugContext(ctx, "ignoring webhook event",
			slog.String("event", evt.Event),
		)
		return nil
	}
	if evt.TxRef == "" {
		return apperrors.InvalidInput("tx_ref is required")
	}

	pay, err := s.payments.GetByProviderTxID(ctx, evt.TxRef)
	if err != nil {
		return fmt.Errorf("get payment for webhook: %w", err)
	}
	if pay.Status == domain.PaymentStatusCompleted {
		return nil
	}

	if _, err := s.complete(ctx, pay); err != nil {
		return err
	}

	return nil
}

// GetBookingPayment returns the payment for a booking, visible to its guest.
func (s *PaymentService) GetBookingPayment(ctx context.Context, actor policy.Actor, bookingID string) (*domain.Payment, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking for payment lookup: %w", err)
	}
	if booking.GuestID != actor.ID {
		return nil, apperrors.Forbidden("payment is not visible to this user")
	}

	pay, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get payment by booking: %w", err)
	}

	return pay, nil
}

func (s *PaymentService) complete(ctx context.Context, pay *domain.Payment) (*domain.Payment, error) {
	now := time.Now().UTC()

	if err := s.payments.UpdateStatus(ctx, pay.ID, domain.PaymentStatusCompleted, &now); err != nil {
		return nil, fmt.Errorf("mark payment completed: %w", err)
	}

	pay.Status = domain.PaymentStatusCompleted
	pay.PaidAt = &now

	if err := s.producer.PublishPaymentCompleted(ctx, pay); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.completed event",
			slog.String("payment_id", pay.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment completed",
		slog.String("payment_id", pay.ID),
		slog.String("booking_id", pay.BookingID),
		slog.Int64("amount", pay.Amount),
	)

	return pay, nil
}
