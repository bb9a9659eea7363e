// Package policy implements role and ownership checks for listings,
// bookings, and reviews. Every check takes an explicit Actor so
// authorization is never inferred from ambient state.
package policy

import (
	"github.com/Fmukanda/travelapp/internal/domain"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// Actor is the party making a request. Anonymous callers have
// Authenticated == false and an empty ID.
type Actor struct {
	ID            string
	Authenticated bool
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// RequireAuthenticated fails with Unauthorized when the actor is anonymous.
func RequireAuthenticated(a Actor) error {
	if !a.Authenticated || a.ID == "" {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

// CanWriteListing permits listing updates and deletes only to the host.
func CanWriteListing(a Actor, l *domain.Listing) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != l.HostID {
		return apperrors.Forbidden("only the host may modify this listing")
	}
	return nil
}

// CanViewBooking permits booking reads to the booking's guest and the
// listing's host.
func CanViewBooking(a Actor, b *domain.Booking, listingHostID string) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != b.GuestID && a.ID != listingHostID {
		return apperrors.Forbidden("booking is not visible to this user")
	}
	return nil
}

// CanCancelBooking permits cancellation only to the booking's guest.
func CanCancelBooking(a Actor, b *domain.Booking) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != b.GuestID {
		return apperrors.Forbidden("only the guest may cancel this booking")
	}
	return nil
}

// CanModifyBooking permits date and party changes only to the booking's guest.
func CanModifyBooking(a Actor, b *domain.Booking) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != b.GuestID {
		return apperrors.Forbidden("only the guest may modify this booking")
	}
	return nil
}

// CanConfirmBooking permits confirmation only to the listing's host.
func CanConfirmBooking(a Actor, listingHostID string) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != listingHostID {
		return apperrors.Forbidden("only the host may confirm this booking")
	}
	return nil
}

// CanListListingBookings permits the bookings sub-resource only to the host.
func CanListListingBookings(a Actor, l *domain.Listing) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != l.HostID {
		return apperrors.Forbidden("only the host may list bookings for this listing")
	}
	return nil
}

// CanEditReview permits review edits only to the authoring guest.
func CanEditReview(a Actor, r *domain.Review) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.ID != r.GuestID {
		return apperrors.Forbidden("only the author may edit this review")
	}
	return nil
}
