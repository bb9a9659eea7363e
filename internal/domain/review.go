package domain

import "time"

// Review is a 1-5 rating plus comment tied one-to-one to a booking.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	BookingID string    `json:"booking_id"`
	GuestID   string    `json:"guest_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewSummary holds the aggregated rating for a listing. AverageRating is 0
// when the listing has no reviews.
type ReviewSummary struct {
	ListingID     string  `json:"listing_id"`
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}
