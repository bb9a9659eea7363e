package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/event"
	"github.com/Fmukanda/travelapp/internal/policy"
	"github.com/Fmukanda/travelapp/internal/repository"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// BookingService implements the booking lifecycle: creation with validation
// and pricing, the status state machine, and visibility-scoped reads.
type BookingService struct {
	bookings repository.BookingRepository
	listings repository.ListingRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(
	bookings repository.BookingRepository,
	listings repository.ListingRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		listings: listings,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookingInput holds the parameters for creating a booking. The guest
// is always the acting user, never client-supplied.
type CreateBookingInput struct {
	ListingID       string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestsCount     int
	SpecialRequests string
}

// CreateBooking validates the request against the listing and records a
// pending booking priced from the listing's nightly rate.
func (s *BookingService) CreateBooking(ctx context.Context, actor policy.Actor, input CreateBookingInput) (*domain.Booking, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if input.ListingID == "" {
		return nil, apperrors.InvalidInput("listing_id is required")
	}

	listing, err := s.listings.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for booking: %w", err)
	}

	if domain.Nights(input.CheckIn, input.CheckOut) <= 0 {
		return nil, apperrors.InvalidInput("check-out must be after check-in")
	}
	if input.GuestsCount <= 0 {
		return nil, apperrors.InvalidInput("guests_count must be positive")
	}
	if input.GuestsCount > listing.MaxGuests {
		return nil, apperrors.InvalidInput(fmt.Sprintf("guests_count %d exceeds listing capacity of %d",
			input.GuestsCount, listing.MaxGuests))
	}
	if !listing.IsAvailable {
		return nil, apperrors.InvalidInput("listing is not available for booking")
	}
	if actor.ID == listing.HostID {
		return nil, apperrors.InvalidInput("hosts cannot book their own listing")
	}

	overlaps, err := s.bookings.HasOverlap(ctx, listing.ID, input.CheckIn, input.CheckOut, "")
	if err != nil {
		return nil, fmt.Errorf("check booking overlap: %w", err)
	}
	if overlaps {
		return nil, apperrors.Conflict("listing is already booked for these dates")
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:              uuid.New().String(),
		ListingID:       listing.ID,
		GuestID:         actor.ID,
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		GuestsCount:     input.GuestsCount,
		TotalPrice:      domain.TotalPriceFor(listing.PricePerNight, input.CheckIn, input.CheckOut),
		Currency:        listing.Currency,
		Status:          domain.BookingStatusPending,
		SpecialRequests: strings.TrimSpace(input.SpecialRequests),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.producer.PublishBookingCreated(ctx, booking); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.created event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("listing_id", booking.ListingID),
		slog.String("guest_id", booking.GuestID),
		slog.Int64("total_price", booking.TotalPrice),
	)

	return booking, nil
}

// UpdateBookingInput holds the fields a guest may change on a pending
// booking. Nil fields keep their current value.
type UpdateBookingInput struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	GuestsCount     *int
	SpecialRequests *string
}

// UpdateBooking lets the guest change the dates, party size, or requests of a
// pending booking. Dates, capacity, and overlap are revalidated against the
// listing, and the total price is rederived from its nightly rate.
func (s *BookingService) UpdateBooking(ctx context.Context, actor policy.Actor, id string, input UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking for update: %w", err)
	}

	if err := policy.CanModifyBooking(actor, booking); err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, apperrors.InvalidInput("only pending bookings can be modified")
	}

	listing, err := s.listings.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for booking: %w", err)
	}

	checkIn := booking.CheckIn
	if input.CheckIn != nil {
		checkIn = *input.CheckIn
	}
	checkOut := booking.CheckOut
	if input.CheckOut != nil {
		checkOut = *input.CheckOut
	}
	guests := booking.GuestsCount
	if input.GuestsCount != nil {
		guests = *input.GuestsCount
	}

	if domain.Nights(checkIn, checkOut) <= 0 {
		return nil, apperrors.InvalidInput("check-out must be after check-in")
	}
	if guests <= 0 {
		return nil, apperrors.InvalidInput("guests_count must be positive")
	}
	if guests > listing.MaxGuests {
		return nil, apperrors.InvalidInput(fmt.Sprintf("guests_count %d exceeds listing capacity of %d",
			guests, listing.MaxGuests))
	}

	// The booking's own dates must not count against it.
	overlaps, err := s.bookings.HasOverlap(ctx, listing.ID, checkIn, checkOut, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check booking overlap: %w", err)
	}
	if overlaps {
		return nil, apperrors.Conflict("listing is already booked for these dates")
	}

	booking.CheckIn = checkIn
	booking.CheckOut = checkOut
	booking.GuestsCount = guests
	booking.TotalPrice = domain.TotalPriceFor(listing.PricePerNight, checkIn, checkOut)
	if input.SpecialRequests != nil {
		booking.SpecialRequests = strings.TrimSpace(*input.SpecialRequests)
	}
	booking.UpdatedAt = time.Now().UTC()

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.logger.InfoContext(ctx, "booking updated",
		slog.String("booking_id", booking.ID),
		slog.String("listing_id", booking.ListingID),
		slog.Int64("total_price", booking.TotalPrice),
	)

	return booking, nil
}

// GetBooking retrieves a booking visible to the actor: its guest or the host
// of the booked listing.
func (s *BookingService) GetBooking(ctx context.Context, actor policy.Actor, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	listing, err := s.listings.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for booking: %w", err)
	}

	if err := policy.CanViewBooking(actor, booking, listing.HostID); err != nil {
		return nil, err
	}

	return booking, nil
}

// ListBookings returns the actor's visible bookings: those they made as a
// guest plus those against their listings.
func (s *BookingService) ListBookings(ctx context.Context, actor policy.Actor, filter repository.BookingFilter) ([]domain.Booking, int, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, 0, err
	}
	if filter.Status != nil && !domain.IsValidBookingStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s",
			*filter.Status, strings.Join(domain.ValidBookingStatuses(), ", ")))
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	filter.ActorID = &actor.ID

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, total, nil
}

// ListListingBookings returns all bookings against one listing, for its host.
func (s *BookingService) ListListingBookings(ctx context.Context, actor policy.Actor, listingID string, filter repository.BookingFilter) ([]domain.Booking, int, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, 0, fmt.Errorf("get listing for bookings: %w", err)
	}

	if err := policy.CanListListingBookings(actor, listing); err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	filter.ListingID = &listingID
	filter.ActorID = nil

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list listing bookings: %w", err)
	}

	return bookings, total, nil
}

// ConfirmBooking transitions a pending booking to confirmed. Only the host of
// the booked listing may confirm.
func (s *BookingService) ConfirmBooking(ctx context.Context, actor policy.Actor, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking for confirm: %w", err)
	}

	listing, err := s.listings.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for confirm: %w", err)
	}

	if err := policy.CanConfirmBooking(actor, listing.HostID); err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, apperrors.InvalidTransition(booking.Status, domain.BookingStatusConfirmed)
	}

	return s.transition(ctx, booking, domain.BookingStatusConfirmed)
}

// CancelBooking transitions a booking to cancelled. Only the booking's guest
// may cancel; cancelled and completed bookings stay as they are.
func (s *BookingService) CancelBooking(ctx context.Context, actor policy.Actor, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking for cancel: %w", err)
	}

	if err := policy.CanCancelBooking(actor, booking); err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusCancelled {
		return nil, apperrors.AlreadyCancelled("booking", booking.ID)
	}
	if !booking.CanTransitionTo(domain.BookingStatusCancelled) {
		return nil, apperrors.InvalidTransition(booking.Status, domain.BookingStatusCancelled)
	}

	updated, err := s.transition(ctx, booking, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishBookingCancelled(ctx, booking.ID, booking.ListingID, ""); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.cancelled event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	}

	return updated, nil
}

// CompleteElapsed marks confirmed bookings whose check-out has passed as
// completed. Called periodically by the completion worker.
func (s *BookingService) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.bookings.MarkCompleted(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark bookings completed: %w", err)
	}

	if n > 0 {
		s.logger.InfoContext(ctx, "bookings completed",
			slog.Int64("count", n),
		)
	}

	return n, nil
}

// transition persists a status change and publishes the status event.
func (s *BookingService) transition(ctx context.Context, booking *domain.Booking, newStatus string) (*domain.Booking, error) {
	oldStatus := booking.Status

	if err := s.bookings.UpdateStatus(ctx, booking.ID, oldStatus, newStatus); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if err := s.producer.PublishBookingStatusChanged(ctx, booking.ID, booking.ListingID, oldStatus, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.status_changed event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "booking status updated",
		slog.String("booking_id", booking.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	booking.Status = newStatus
	booking.UpdatedAt = time.Now().UTC()

	return booking, nil
}
