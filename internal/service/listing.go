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
	"github.com/Fmukanda/travelapp/pkg/slug"
)

// ListingService implements the business logic for listing operations.
type ListingService struct {
	repo   repository.ListingRepository
	logger *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(repo repository.ListingRepository, logger *slog.Logger) *ListingService {
	return &ListingService{
		repo:   repo,
		logger: logger,
	}
}

// CreateListingInput holds the parameters for creating a listing.
type CreateListingInput struct {
	Title         string
	Description   string
	PropertyType  string
	PricePerNight int64
	Currency      string
	MaxGuests     int
	Bedrooms      int
	Beds          int
	Bathrooms     int
	Address       string
	City          string
	Country       string
	Latitude      *float64
	Longitude     *float64
	Amenities     []string
}

// UpdateListingInput holds the parameters for updating a listing. Nil fields
// are left unchanged.
type UpdateListingInput struct {
	Title         *string
	Description   *string
	PricePerNight *int64
	MaxGuests     *int
	Amenities     []string
	IsAvailable   *bool
}

func validateListingInput(input CreateListingInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.InvalidInput("title is required")
	}
	if !domain.IsValidPropertyType(input.PropertyType) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid property type %q, must be one of: %s",
			input.PropertyType, strings.Join(domain.ValidPropertyTypes(), ", ")))
	}
	if input.PricePerNight <= 0 {
		return apperrors.InvalidInput("price_per_night must be positive")
	}
	if len(input.Currency) != 3 {
		return apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}
	if input.MaxGuests <= 0 {
		return apperrors.InvalidInput("max_guests must be positive")
	}
	if input.Latitude != nil && (*input.Latitude < -90 || *input.Latitude > 90) {
		return apperrors.InvalidInput("latitude must be between -90 and 90")
	}
	if input.Longitude != nil && (*input.Longitude < -180 || *input.Longitude > 180) {
		return apperrors.InvalidInput("longitude must be between -180 and 180")
	}
	return nil
}

// CreateListing creates a new listing owned by the acting host.
func (s *ListingService) CreateListing(ctx context.Context, actor policy.Actor, input CreateListingInput) (*domain.Listing, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:            uuid.New().String(),
		HostID:        actor.ID,
		Title:         strings.TrimSpace(input.Title),
		Slug:          slug.Generate(input.Title),
		Description:   input.Description,
		PropertyType:  input.PropertyType,
		PricePerNight: input.PricePerNight,
		Currency:      strings.ToUpper(input.Currency),
		MaxGuests:     input.MaxGuests,
		Bedrooms:      input.Bedrooms,
		Beds:          input.Beds,
		Bathrooms:     input.Bathrooms,
		Address:       input.Address,
		City:          input.City,
		Country:       input.Country,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Amenities:     input.Amenities,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.repo.Create(ctx, listing)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		// Slug collision with another title: retry once with a short suffix.
		listing.Slug = fmt.Sprintf("%s-%s", listing.Slug, listing.ID[:8])
		err = s.repo.Create(ctx, listing)
	}
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing created",
		slog.String("listing_id", listing.ID),
		slog.String("host_id", listing.HostID),
		slog.String("slug", listing.Slug),
	)

	return listing, nil
}

// GetListing retrieves a listing by its ID.
func (s *ListingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return listing, nil
}

// SearchListings returns a filtered, paginated list of listings.
func (s *ListingService) SearchListings(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	listings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}

	return listings, total, nil
}

// UpdateListing applies partial updates to a listing owned by the actor.
func (s *ListingService) UpdateListing(ctx context.Context, actor policy.Actor, id string, input UpdateListingInput) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing for update: %w", err)
	}

	if err := policy.CanWriteListing(actor, listing); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.PricePerNight != nil {
		if *input.PricePerNight <= 0 {
			return nil, apperrors.InvalidInput("price_per_night must be positive")
		}
		listing.PricePerNight = *input.PricePerNight
	}
	if input.MaxGuests != nil {
		if *input.MaxGuests <= 0 {
			return nil, apperrors.InvalidInput("max_guests must be positive")
		}
		listing.MaxGuests = *input.MaxGuests
	}
	if input.Amenities != nil {
		listing.Amenities = input.Amenities
	}
	if input.IsAvailable != nil {
		listing.IsAvailable = *input.IsAvailable
	}
	listing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing updated",
		slog.String("listing_id", listing.ID),
		slog.String("host_id", listing.HostID),
	)

	return listing, nil
}

// DeleteListing removes a listing owned by the actor. Bookings and reviews on
// the listing are removed with it.
func (s *ListingService) DeleteListing(ctx context.Context, actor policy.Actor, id string) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get listing for delete: %w", err)
	}

	if err := policy.CanWriteListing(actor, listing); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing deleted",
		slog.String("listing_id", id),
		slog.String("host_id", listing.HostID),
	)

	return nil
}
