package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/repository"
	"github.com/Fmukanda/travelapp/pkg/database"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

func newListingRepo(t *testing.T) (*ListingRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewListingRepository(mock), mock
}

func sampleListing() *domain.Listing {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Listing{
		ID:            "lst-001",
		HostID:        "host-001",
		Title:         "Cozy Loft in Nairobi",
		Slug:          "cozy-loft-in-nairobi",
		Description:   "A bright loft near the city center",
		PropertyType:  domain.PropertyTypeApartment,
		PricePerNight: 10000,
		Currency:      "USD",
		MaxGuests:     4,
		Bedrooms:      2,
		Beds:          2,
		Bathrooms:     1,
		Address:       "12 Moi Avenue",
		City:          "Nairobi",
		Country:       "Kenya",
		Amenities:     []string{"wifi", "kitchen"},
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func listingRow(l *domain.Listing) []any {
	amenities, _ := json.Marshal(l.Amenities)
	return []any{
		l.ID, l.HostID, l.Title, l.Slug, l.Description, l.PropertyType,
		l.PricePerNight, l.Currency, l.MaxGuests, l.Bedrooms, l.Beds, l.Bathrooms,
		l.Address, l.City, l.Country, l.Latitude, l.Longitude, amenities,
		l.IsAvailable, l.CreatedAt, l.UpdatedAt,
	}
}

var listingCols = []string{
	"id", "host_id", "title", "slug", "description", "property_type",
	"price_per_night", "currency", "max_guests", "bedrooms", "beds", "bathrooms",
	"address", "city", "country", "latitude", "longitude", "amenities",
	"is_available", "created_at", "updated_at",
}

// --- Create ---

func TestListingRepository_Create_Success(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			l.ID, l.HostID, l.Title, l.Slug, l.Description, l.PropertyType,
			l.PricePerNight, l.Currency, l.MaxGuests, l.Bedrooms, l.Beds, l.Bathrooms,
			l.Address, l.City, l.Country, l.Latitude, l.Longitude, pgxmock.AnyArg(),
			l.IsAvailable, l.CreatedAt, l.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Create_DuplicateSlug(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			l.ID, l.HostID, l.Title, l.Slug, l.Description, l.PropertyType,
			l.PricePerNight, l.Currency, l.MaxGuests, l.Bedrooms, l.Beds, l.Bathrooms,
			l.Address, l.City, l.Country, l.Latitude, l.Longitude, pgxmock.AnyArg(),
			l.IsAvailable, l.CreatedAt, l.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), l)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID ---

func TestListingRepository_GetByID_Success(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()

	mock.ExpectQuery("SELECT (.+) FROM listings WHERE id =").
		WithArgs(l.ID).
		WillReturnRows(pgxmock.NewRows(listingCols).AddRow(listingRow(l)...))

	got, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
	assert.Equal(t, l.HostID, got.HostID)
	assert.Equal(t, []string{"wifi", "kitchen"}, got.Amenities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM listings WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- List ---

func TestListingRepository_List_NoFilters(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()
	rows := pgxmock.NewRows(append(listingCols, "total_count")).
		AddRow(append(listingRow(l), 1)...)

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(20, 0).
		WillReturnRows(rows)

	got, total, err := repo.List(context.Background(), repository.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_List_AllFilters(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()
	city := "nairobi"
	country := "ken"
	propertyType := domain.PropertyTypeApartment
	minPrice := int64(5000)
	maxPrice := int64(20000)
	minGuests := 2

	rows := pgxmock.NewRows(append(listingCols, "total_count")).
		AddRow(append(listingRow(l), 1)...)

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs("%nairobi%", "%ken%", propertyType, minPrice, maxPrice, minGuests, 10, 0).
		WillReturnRows(rows)

	got, total, err := repo.List(context.Background(), repository.ListingFilter{
		City:          &city,
		Country:       &country,
		PropertyType:  &propertyType,
		MinPrice:      &minPrice,
		MaxPrice:      &maxPrice,
		MinGuests:     &minGuests,
		AvailableOnly: true,
		Page:          1,
		PerPage:       10,
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Update ---

func TestListingRepository_Update_Success(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()

	mock.ExpectExec("UPDATE listings").
		WithArgs(
			l.Title, l.Description, l.PropertyType, l.PricePerNight, l.Currency,
			l.MaxGuests, l.Bedrooms, l.Beds, l.Bathrooms, l.Address, l.City,
			l.Country, l.Latitude, l.Longitude, pgxmock.AnyArg(), l.IsAvailable,
			pgxmock.AnyArg(), l.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Update_NotFound(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	l := sampleListing()
	l.ID = "missing"

	mock.ExpectExec("UPDATE listings").
		WithArgs(
			l.Title, l.Description, l.PropertyType, l.PricePerNight, l.Currency,
			l.MaxGuests, l.Bedrooms, l.Beds, l.Bathrooms, l.Address, l.City,
			l.Country, l.Latitude, l.Longitude, pgxmock.AnyArg(), l.IsAvailable,
			pgxmock.AnyArg(), l.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), l)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Delete ---

func TestListingRepository_Delete_Success(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM listings").
		WithArgs("lst-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "lst-001")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newListingRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM listings").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
