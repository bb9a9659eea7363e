package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/policy"
	"github.com/Fmukanda/travelapp/internal/repository"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

func validListingInput() CreateListingInput {
	return CreateListingInput{
		Title:         "Seaside Villa",
		Description:   "A villa by the sea",
		PropertyType:  domain.PropertyTypeVilla,
		PricePerNight: 10000,
		Currency:      "usd",
		MaxGuests:     4,
		Bedrooms:      2,
		Beds:          3,
		Bathrooms:     2,
		City:          "Mombasa",
		Country:       "Kenya",
		Amenities:     []string{"wifi", "pool"},
	}
}

func TestCreateListing_Success(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Listing")).Return(nil)

	listing, err := svc.CreateListing(ctx, hostActor, validListingInput())

	require.NoError(t, err)
	assert.Equal(t, "host-001", listing.HostID)
	assert.Equal(t, "seaside-villa", listing.Slug)
	assert.Equal(t, "USD", listing.Currency, "currency is normalized to upper case")
	assert.True(t, listing.IsAvailable, "new listings start available")
	repo.AssertExpectations(t)
}

func TestCreateListing_RequiresAuthentication(t *testing.T) {
	svc := NewListingService(new(mockListingRepository), newTestLogger())

	_, err := svc.CreateListing(context.Background(), policy.Anonymous(), validListingInput())

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateListing_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateListingInput)
	}{
		{"empty title", func(in *CreateListingInput) { in.Title = "  " }},
		{"bad property type", func(in *CreateListingInput) { in.PropertyType = "castle" }},
		{"zero price", func(in *CreateListingInput) { in.PricePerNight = 0 }},
		{"negative price", func(in *CreateListingInput) { in.PricePerNight = -100 }},
		{"bad currency", func(in *CreateListingInput) { in.Currency = "dollars" }},
		{"zero capacity", func(in *CreateListingInput) { in.MaxGuests = 0 }},
		{"latitude out of range", func(in *CreateListingInput) { lat := 91.0; in.Latitude = &lat }},
		{"longitude out of range", func(in *CreateListingInput) { lng := -200.0; in.Longitude = &lng }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewListingService(new(mockListingRepository), newTestLogger())
			input := validListingInput()
			tt.mutate(&input)

			_, err := svc.CreateListing(context.Background(), hostActor, input)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestCreateListing_RetriesSlugCollision(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.Slug == "seaside-villa"
	})).Return(apperrors.AlreadyExists("listing", "slug", "seaside-villa")).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(l *domain.Listing) bool {
		return len(l.Slug) > len("seaside-villa")
	})).Return(nil).Once()

	listing, err := svc.CreateListing(ctx, hostActor, validListingInput())

	require.NoError(t, err)
	assert.Contains(t, listing.Slug, "seaside-villa-")
	repo.AssertExpectations(t)
}

func TestUpdateListing_HostOnly(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, "lst-001").Return(testListing(), nil)

	_, err := svc.UpdateListing(ctx, otherActor, "lst-001", UpdateListingInput{
		Title: strPtr("Hijacked"),
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateListing_AppliesPartialFields(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, "lst-001").Return(testListing(), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Listing")).Return(nil)

	listing, err := svc.UpdateListing(ctx, hostActor, "lst-001", UpdateListingInput{
		PricePerNight: int64Ptr(15000),
		IsAvailable:   boolPtr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(15000), listing.PricePerNight)
	assert.False(t, listing.IsAvailable)
	assert.Equal(t, "Seaside Villa", listing.Title, "unset fields untouched")
}

func TestUpdateListing_RejectsNonPositivePrice(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, "lst-001").Return(testListing(), nil)

	_, err := svc.UpdateListing(ctx, hostActor, "lst-001", UpdateListingInput{
		PricePerNight: int64Ptr(0),
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteListing_HostOnly(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, "lst-001").Return(testListing(), nil)

	err := svc.DeleteListing(ctx, otherActor, "lst-001")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteListing_Success(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, "lst-001").Return(testListing(), nil)
	repo.On("Delete", ctx, "lst-001").Return(nil)

	err := svc.DeleteListing(ctx, hostActor, "lst-001")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSearchListings_ClampsPagination(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(f repository.ListingFilter) bool {
		return f.Page == 1 && f.PerPage == 100
	})).Return([]domain.Listing{}, 0, nil)

	_, _, err := svc.SearchListings(ctx, repository.ListingFilter{Page: -1, PerPage: 500})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetListing_NotFound(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, "lst-missing").Return(nil, apperrors.NotFound("listing", "lst-missing"))

	_, err := svc.GetListing(ctx, "lst-missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
