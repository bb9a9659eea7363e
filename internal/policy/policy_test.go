package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Fmukanda/travelapp/internal/domain"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

var (
	host  = Actor{ID: "host-1", Authenticated: true}
	guest = Actor{ID: "guest-1", Authenticated: true}
	other = Actor{ID: "user-9", Authenticated: true}
)

func testListing() *domain.Listing {
	return &domain.Listing{ID: "lst-1", HostID: host.ID}
}

func testBooking() *domain.Booking {
	return &domain.Booking{ID: "bk-1", ListingID: "lst-1", GuestID: guest.ID}
}

func TestRequireAuthenticated(t *testing.T) {
	assert.NoError(t, RequireAuthenticated(guest))

	err := RequireAuthenticated(Anonymous())
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	// Authenticated flag without an identity is still rejected.
	err = RequireAuthenticated(Actor{Authenticated: true})
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestCanWriteListing_HostAllowed(t *testing.T) {
	assert.NoError(t, CanWriteListing(host, testListing()))
}

func TestCanWriteListing_NonHostForbidden(t *testing.T) {
	err := CanWriteListing(other, testListing())
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestCanWriteListing_AnonymousUnauthorized(t *testing.T) {
	err := CanWriteListing(Anonymous(), testListing())
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestCanViewBooking_GuestAllowed(t *testing.T) {
	assert.NoError(t, CanViewBooking(guest, testBooking(), host.ID))
}

func TestCanViewBooking_HostAllowed(t *testing.T) {
	assert.NoError(t, CanViewBooking(host, testBooking(), host.ID))
}

func TestCanViewBooking_UnrelatedUserForbidden(t *testing.T) {
	err := CanViewBooking(other, testBooking(), host.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestCanCancelBooking_GuestOnly(t *testing.T) {
	assert.NoError(t, CanCancelBooking(guest, testBooking()))

	err := CanCancelBooking(host, testBooking())
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestCanConfirmBooking_HostOnly(t *testing.T) {
	assert.NoError(t, CanConfirmBooking(host, host.ID))

	err := CanConfirmBooking(guest, host.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestCanListListingBookings_HostOnly(t *testing.T) {
	assert.NoError(t, CanListListingBookings(host, testListing()))

	err := CanListListingBookings(guest, testListing())
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestCanEditReview_AuthorOnly(t *testing.T) {
	review := &domain.Review{ID: "rev-1", GuestID: guest.ID}
	assert.NoError(t, CanEditReview(guest, review))

	err := CanEditReview(other, review)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}
