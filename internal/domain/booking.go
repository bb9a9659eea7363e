package domain

import "time"

// Booking status constants.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking represents a guest's reservation of a listing for a date range.
// TotalPrice is always derived server-side, never client-supplied.
type Booking struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listing_id"`
	GuestID         string    `json:"guest_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	GuestsCount     int       `json:"guests_count"`
	TotalPrice      int64     `json:"total_price"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ValidBookingStatuses returns all valid booking statuses.
func ValidBookingStatuses() []string {
	return []string{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusCancelled,
		BookingStatusCompleted,
	}
}

// IsValidBookingStatus checks if a status string is valid.
func IsValidBookingStatus(status string) bool {
	for _, s := range ValidBookingStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid. Cancelled
// and completed are terminal.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
		BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
		BookingStatusCancelled: {},
		BookingStatusCompleted: {},
	}
}

// CanTransitionTo checks if the booking can transition to the target status.
func (b *Booking) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[b.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// Nights returns the whole-day count between check-in and check-out. The
// result is non-positive for an empty or inverted range.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// TotalPriceFor derives the booking price from a listing's nightly rate and a
// date range. Pure function so pricing is testable without storage.
func TotalPriceFor(pricePerNight int64, checkIn, checkOut time.Time) int64 {
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return 0
	}
	return pricePerNight * int64(nights)
}
