package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/policy"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

func testReview() *domain.Review {
	now := time.Now().UTC()
	return &domain.Review{
		ID:        "rev-001",
		ListingID: "lst-001",
		BookingID: "bk-001",
		GuestID:   "guest-001",
		Rating:    5,
		Comment:   "Great stay",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateReview_Success(t *testing.T) {
	reviews := new(mockReviewRepository)
	bookings := new(mockBookingRepository)
	cache := new(mockSummaryCache)
	svc := NewReviewService(reviews, bookings, cache, newTestLogger())
	ctx := context.Background()

	bookings.On("GetByID", ctx, "bk-001").Return(testBooking(domain.BookingStatusCompleted), nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	cache.On("Invalidate", ctx, "lst-001").Return(nil)

	review, err := svc.CreateReview(ctx, guestActor, CreateReviewInput{
		BookingID: "bk-001",
		Rating:    5,
		Comment:   "  Great stay  ",
	})

	require.NoError(t, err)
	assert.Equal(t, "lst-001", review.ListingID, "listing inferred from the booking")
	assert.Equal(t, "guest-001", review.GuestID)
	assert.Equal(t, "Great stay", review.Comment)
	cache.AssertExpectations(t)
}

func TestCreateReview_RequiresAuthentication(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepository), new(mockBookingRepository), nil, newTestLogger())

	_, err := svc.CreateReview(context.Background(), policy.Anonymous(), CreateReviewInput{
		BookingID: "bk-001",
		Rating:    5,
	})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateReview_RejectsRatingOutOfRange(t *testing.T) {
	for _, rating := range []int{0, -1, 6} {
		svc := NewReviewService(new(mockReviewRepository), new(mockBookingRepository), nil, newTestLogger())

		_, err := svc.CreateReview(context.Background(), guestActor, CreateReviewInput{
			BookingID: "bk-001",
			Rating:    rating,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "rating %d", rating)
	}
}

func TestCreateReview_ForbiddenForOtherGuest(t *testing.T) {
	reviews := new(mockReviewRepository)
	bookings := new(mockBookingRepository)
	svc := NewReviewService(reviews, bookings, nil, newTestLogger())
	ctx := context.Background()

	bookings.On("GetByID", ctx, "bk-001").Return(testBooking(domain.BookingStatusCompleted), nil)

	_, err := svc.CreateReview(ctx, otherActor, CreateReviewInput{
		BookingID: "bk-001",
		Rating:    4,
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_OneReviewPerBooking(t *testing.T) {
	reviews := new(mockReviewRepository)
	bookings := new(mockBookingRepository)
	svc := NewReviewService(reviews, bookings, nil, newTestLogger())
	ctx := context.Background()

	bookings.On("GetByID", ctx, "bk-001").Return(testBooking(domain.BookingStatusCompleted), nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Return(apperrors.AlreadyExists("review", "booking_id", "bk-001"))

	_, err := svc.CreateReview(ctx, guestActor, CreateReviewInput{
		BookingID: "bk-001",
		Rating:    4,
	})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUpdateReview_AuthorOnly(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := NewReviewService(reviews, new(mockBookingRepository), nil, newTestLogger())
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-001").Return(testReview(), nil)

	_, err := svc.UpdateReview(ctx, otherActor, "rev-001", UpdateReviewInput{
		Rating: intPtr(1),
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateReview_InvalidatesCache(t *testing.T) {
	reviews := new(mockReviewRepository)
	cache := new(mockSummaryCache)
	svc := NewReviewService(reviews, new(mockBookingRepository), cache, newTestLogger())
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-001").Return(testReview(), nil)
	reviews.On("Update", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	cache.On("Invalidate", ctx, "lst-001").Return(nil)

	review, err := svc.UpdateReview(ctx, guestActor, "rev-001", UpdateReviewInput{
		Rating:  intPtr(3),
		Comment: strPtr("Revised opinion"),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, review.Rating)
	assert.Equal(t, "Revised opinion", review.Comment)
	cache.AssertExpectations(t)
}

func TestSummary_CacheHitSkipsStorage(t *testing.T) {
	reviews := new(mockReviewRepository)
	cache := new(mockSummaryCache)
	svc := NewReviewService(reviews, new(mockBookingRepository), cache, newTestLogger())
	ctx := context.Background()

	cached := &domain.ReviewSummary{ListingID: "lst-001", AverageRating: 4.5, TotalCount: 2}
	cache.On("Get", ctx, "lst-001").Return(cached, nil)

	summary, err := svc.Summary(ctx, "lst-001")

	require.NoError(t, err)
	assert.Equal(t, 4.5, summary.AverageRating)
	reviews.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything)
}

func TestSummary_CacheMissComputesAndStores(t *testing.T) {
	reviews := new(mockReviewRepository)
	cache := new(mockSummaryCache)
	svc := NewReviewService(reviews, new(mockBookingRepository), cache, newTestLogger())
	ctx := context.Background()

	computed := &domain.ReviewSummary{ListingID: "lst-001", AverageRating: 4.0, TotalCount: 3}
	cache.On("Get", ctx, "lst-001").Return(nil, apperrors.NotFound("review summary", "lst-001"))
	reviews.On("Summary", ctx, "lst-001").Return(computed, nil)
	cache.On("Set", ctx, computed).Return(nil)

	summary, err := svc.Summary(ctx, "lst-001")

	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.AverageRating)
	cache.AssertExpectations(t)
}

func TestSummary_NoReviewsIsZero(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := NewReviewService(reviews, new(mockBookingRepository), nil, newTestLogger())
	ctx := context.Background()

	reviews.On("Summary", ctx, "lst-002").
		Return(&domain.ReviewSummary{ListingID: "lst-002", AverageRating: 0, TotalCount: 0}, nil)

	summary, err := svc.Summary(ctx, "lst-002")

	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalCount)
}
