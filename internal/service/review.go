package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/policy"
	"github.com/Fmukanda/travelapp/internal/repository"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// SummaryCache caches review summaries keyed by listing. Misses surface as
// ErrNotFound.
type SummaryCache interface {
	Get(ctx context.Context, listingID string) (*domain.ReviewSummary, error)
	Set(ctx context.Context, summary *domain.ReviewSummary) error
	Invalidate(ctx context.Context, listingID string) error
}

// ReviewService implements review creation and the listing rating aggregate.
type ReviewService struct {
	reviews  repository.ReviewRepository
	bookings repository.BookingRepository
	cache    SummaryCache
	logger   *slog.Logger
}

// NewReviewService creates a new review service. The cache may be nil, in
// which case summaries are always computed from storage.
func NewReviewService(
	reviews repository.ReviewRepository,
	bookings repository.BookingRepository,
	cache SummaryCache,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		cache:    cache,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for creating a review. The guest is
// always the acting user.
type CreateReviewInput struct {
	BookingID string
	Rating    int
	Comment   string
}

// UpdateReviewInput holds the parameters for updating a review. Nil fields
// are left unchanged.
type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

// CreateReview records a review against the listing of one of the actor's
// bookings. One review per booking.
func (s *ReviewService) CreateReview(ctx context.Context, actor policy.Actor, input CreateReviewInput) (*domain.Review, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if input.BookingID == "" {
		return nil, apperrors.InvalidInput("booking_id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking for review: %w", err)
	}
	if booking.GuestID != actor.ID {
		return nil, apperrors.Forbidden("only the booking's guest may review it")
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		ListingID: booking.ListingID,
		BookingID: booking.ID,
		GuestID:   actor.ID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.invalidateSummary(ctx, review.ListingID)

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("listing_id", review.ListingID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// ListReviews returns a filtered, paginated list of reviews.
func (s *ReviewService) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	reviews, total, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

// UpdateReview applies partial updates to a review authored by the actor.
func (s *ReviewService) UpdateReview(ctx context.Context, actor policy.Actor, id string, input UpdateReviewInput) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	if err := policy.CanEditReview(actor, review); err != nil {
		return nil, err
	}

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, apperrors.InvalidInput("rating must be between 1 and 5")
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = strings.TrimSpace(*input.Comment)
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.invalidateSummary(ctx, review.ListingID)

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("listing_id", review.ListingID),
	)

	return review, nil
}

// Summary returns the average rating and review count for a listing. The
// average is 0 when the listing has no reviews. Results are cached.
func (s *ReviewService) Summary(ctx context.Context, listingID string) (*domain.ReviewSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, listingID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "review summary cache read failed",
				slog.String("listing_id", listingID),
				slog.String("error", err.Error()),
			)
		}
	}

	summary, err := s.reviews.Summary(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("compute review summary: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "review summary cache write failed",
				slog.String("listing_id", listingID),
				slog.String("error", err.Error()),
			)
		}
	}

	return summary, nil
}

func (s *ReviewService) invalidateSummary(ctx context.Context, listingID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, listingID); err != nil {
		s.logger.WarnContext(ctx, "review summary cache invalidation failed",
			slog.String("listing_id", listingID),
			slog.String("error", err.Error()),
		)
	}
}
