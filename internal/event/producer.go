package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Fmukanda/travelapp/internal/domain"
	pkgkafka "github.com/Fmukanda/travelapp/pkg/kafka"
)

// Kafka topic constants for booking domain events.
const (
	TopicBookingCreated       = "travelapp.booking.created"
	TopicBookingStatusChanged = "travelapp.booking.status_changed"
	TopicBookingCancelled     = "travelapp.booking.cancelled"
	TopicPaymentCompleted     = "travelapp.payment.completed"
)

// Aggregate type constants.
const (
	AggregateTypeBooking = "booking"
	AggregateTypePayment = "payment"
)

// Source identifier for events originating from this service.
const SourceTravelApp = "travelapp-api"

// BookingCreatedData is the payload for a booking.created event (full booking snapshot).
type BookingCreatedData struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	GuestID    string    `json:"guest_id"`
	Status     string    `json:"status"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	TotalPrice int64     `json:"total_price"`
	Currency   string    `json:"currency"`
}

// BookingStatusChangedData is the payload for a booking.status_changed event.
type BookingStatusChangedData struct {
	BookingID string `json:"booking_id"`
	ListingID string `json:"listing_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// BookingCancelledData is the payload for a booking.cancelled event.
type BookingCancelledData struct {
	BookingID string `json:"booking_id"`
	ListingID string `json:"listing_id"`
	Reason    string `json:"reason,omitempty"`
}

// PaymentCompletedData is the payload for a payment.completed event.
type PaymentCompletedData struct {
	PaymentID    string `json:"payment_id"`
	BookingID    string `json:"booking_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ProviderTxID string `json:"provider_tx_id"`
}

// Producer publishes booking domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishBookingCreated publishes a booking.created event with the full booking snapshot.
func (p *Producer) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	data := BookingCreatedData{
		ID:         b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		Status:     b.Status,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Guests:     b.GuestsCount,
		TotalPrice: b.TotalPrice,
		Currency:   b.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicBookingCreated, b.ID, AggregateTypeBooking, SourceTravelApp, data)
	if err != nil {
		return fmt.Errorf("create booking.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookingCreated, event); err != nil {
		return fmt.Errorf("publish booking.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published booking.created event",
		slog.String("booking_id", b.ID),
		slog.String("listing_id", b.ListingID),
	)

	return nil
}

// PublishBookingStatusChanged publishes a booking.status_changed event.
func (p *Producer) PublishBookingStatusChanged(ctx context.Context, bookingID, listingID, oldStatus, newStatus string) error {
	data := BookingStatusChangedData{
		BookingID: bookingID,
		ListingID: listingID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicBookingStatusChanged, bookingID, AggregateTypeBooking, SourceTravelApp, data)
	if err != nil {
		return fmt.Errorf("create booking.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookingStatusChanged, event); err != nil {
		return fmt.Errorf("publish booking.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published booking.status_changed event",
		slog.String("booking_id", bookingID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishBookingCancelled publishes a booking.cancelled event.
func (p *Producer) PublishBookingCancelled(ctx context.Context, bookingID, listingID, reason string) error {
	data := BookingCancelledData{
		BookingID: bookingID,
		ListingID: listingID,
		Reason:    reason,
	}

	event, err := pkgkafka.NewEvent(TopicBookingCancelled, bookingID, AggregateTypeBooking, SourceTravelApp, data)
	if err != nil {
		return fmt.Errorf("create booking.cancelled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookingCancelled, event); err != nil {
		return fmt.Errorf("publish booking.cancelled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published booking.cancelled event",
		slog.String("booking_id", bookingID),
		slog.String("reason", reason),
	)

	return nil
}

// PublishPaymentCompleted publishes a payment.completed event.
func (p *Producer) PublishPaymentCompleted(ctx context.Context, pay *domain.Payment) error {
	data := PaymentCompletedData{
		PaymentID:    pay.ID,
		BookingID:    pay.BookingID,
		Amount:       pay.Amount,
		Currency:     pay.Currency,
		ProviderTxID: pay.ProviderTxID,
	}

	event, err := pkgkafka.NewEvent(TopicPaymentCompleted, pay.ID, AggregateTypePayment, SourceTravelApp, data)
	if err != nil {
		return fmt.Errorf("create payment.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentCompleted, event); err != nil {
		return fmt.Errorf("publish payment.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.completed event",
		slog.String("payment_id", pay.ID),
		slog.String("booking_id", pay.BookingID),
	)

	return nil
}
