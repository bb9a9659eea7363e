package repository

import (
	"context"
	"time"

	"github.com/Fmukanda/travelapp/internal/domain"
)

// ListingFilter defines filter criteria for searching listings.
type ListingFilter struct {
	City          *string
	Country       *string
	PropertyType  *string
	MinPrice      *int64
	MaxPrice      *int64
	MinGuests     *int
	AvailableOnly bool
	Page          int
	PerPage       int
}

// BookingFilter defines filter criteria for listing bookings. ActorID scopes
// the result to bookings the actor may see (their own, or against their
// listings). ListingID restricts to a single listing.
type BookingFilter struct {
	ActorID      *string
	ListingID    *string
	Status       *string
	UpcomingFrom *time.Time
	Page         int
	PerPage      int
}

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	ListingID *string
	Page      int
	PerPage   int
}

// ListingRepository defines listing persistence operations.
type ListingRepository interface {
	// Create inserts a new listing.
	Create(ctx context.Context, l *domain.Listing) error

	// GetByID retrieves a listing by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// List returns listings matching the filter along with the total count.
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, int, error)

	// Update rewrites the mutable fields of a listing. The host reference is
	// never changed.
	Update(ctx context.Context, l *domain.Listing) error

	// Delete removes a listing; bookings and reviews cascade.
	Delete(ctx context.Context, id string) error
}

// BookingRepository defines booking persistence operations.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, b *domain.Booking) error

	// GetByID retrieves a booking by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// List returns bookings matching the filter along with the total count.
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, int, error)

	// Update rewrites the mutable fields of a booking: dates, party size,
	// price, and special requests.
	Update(ctx context.Context, b *domain.Booking) error

	// UpdateStatus transitions a booking from one status to another. The
	// transition fails if the booking is no longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to string) error

	// HasOverlap reports whether any pending or confirmed booking for the
	// listing intersects the [checkIn, checkOut) range, excluding the
	// booking with excludeID (empty for new bookings).
	HasOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time, excludeID string) (bool, error)

	// MarkCompleted transitions confirmed bookings whose check-out is on or
	// before the given date to completed, returning the affected count.
	MarkCompleted(ctx context.Context, before time.Time) (int64, error)
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review. At most one review per booking is
	// enforced by the store.
	Create(ctx context.Context, r *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// List returns reviews matching the filter along with the total count.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// Update rewrites the rating and comment of a review.
	Update(ctx context.Context, r *domain.Review) error

	// Summary computes the average rating and review count for a listing.
	// The average is 0 when the listing has no reviews.
	Summary(ctx context.Context, listingID string) (*domain.ReviewSummary, error)
}

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	// Create inserts a new payment record.
	Create(ctx context.Context, p *domain.Payment) error

	// GetByID retrieves a payment by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByProviderTxID retrieves a payment by the gateway transaction
	// reference.
	GetByProviderTxID(ctx context.Context, txID string) (*domain.Payment, error)

	// GetByBookingID retrieves the most recent payment for a booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)

	// UpdateStatus changes the status of a payment, recording paid_at when
	// the payment completes.
	UpdateStatus(ctx context.Context, id string, status string, paidAt *time.Time) error
}
