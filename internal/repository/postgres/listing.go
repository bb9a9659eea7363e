package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Fmukanda/travelapp/internal/domain"
	"github.com/Fmukanda/travelapp/internal/repository"
	"github.com/Fmukanda/travelapp/pkg/database"
	apperrors "github.com/Fmukanda/travelapp/pkg/errors"
)

// ListingRepository implements repository.ListingRepository using PostgreSQL.
type ListingRepository struct {
	pool database.DBTX
}

// NewListingRepository creates a new PostgreSQL-backed listing repository.
func NewListingRepository(pool database.DBTX) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `id, host_id, title, slug, description, property_type, price_per_night, currency,
	max_guests, bedrooms, beds, bathrooms, address, city, country, latitude, longitude, amenities,
	is_available, created_at, updated_at`

// Create inserts a new listing.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	amenitiesJSON, err := json.Marshal(l.Amenities)
	if err != nil {
		return fmt.Errorf("marshal amenities: %w", err)
	}

	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err = r.pool.Exec(ctx, query,
		l.ID,
		l.HostID,
		l.Title,
		l.Slug,
		l.Description,
		l.PropertyType,
		l.PricePerNight,
		l.Currency,
		l.MaxGuests,
		l.Bedrooms,
		l.Beds,
		l.Bathrooms,
		l.Address,
		l.City,
		l.Country,
		l.Latitude,
		l.Longitude,
		amenitiesJSON,
		l.IsAvailable,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("listing", "slug", l.Slug)
		}
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by its ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("listing", id)
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return l, nil
}

// List returns listings matching the filter with the total count.
func (r *ListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.City != nil {
		conditions = append(conditions, fmt.Sprintf("city ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.City+"%")
		argIndex++
	}

	if filter.Country != nil {
		conditions = append(conditions, fmt.Sprintf("country ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Country+"%")
		argIndex++
	}

	if filter.PropertyType != nil {
		conditions = append(conditions, fmt.Sprintf("property_type = $%d", argIndex))
		args = append(args, *filter.PropertyType)
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price_per_night >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price_per_night <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	if filter.MinGuests != nil {
		conditions = append(conditions, fmt.Sprintf("max_guests >= $%d", argIndex))
		args = append(args, *filter.MinGuests)
		argIndex++
	}

	if filter.AvailableOnly {
		conditions = append(conditions, "is_available = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT `+listingColumns+`,
		       count(*) OVER() AS total_count
		FROM listings
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var (
		listings   = make([]domain.Listing, 0)
		totalCount int
	)

	for rows.Next() {
		var (
			l             domain.Listing
			amenitiesJSON []byte
		)

		if err := rows.Scan(
			&l.ID,
			&l.HostID,
			&l.Title,
			&l.Slug,
			&l.Description,
			&l.PropertyType,
			&l.PricePerNight,
			&l.Currency,
			&l.MaxGuests,
			&l.Bedrooms,
			&l.Beds,
			&l.Bathrooms,
			&l.Address,
			&l.City,
			&l.Country,
			&l.Latitude,
			&l.Longitude,
			&amenitiesJSON,
			&l.IsAvailable,
			&l.CreatedAt,
			&l.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan listing row: %w", err)
		}

		if err := unmarshalAmenities(amenitiesJSON, &l); err != nil {
			return nil, 0, err
		}

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listing rows: %w", err)
	}

	return listings, totalCount, nil
}

// Update rewrites the mutable fields of a listing. host_id is deliberately
// absent from the SET clause.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	amenitiesJSON, err := json.Marshal(l.Amenities)
	if err != nil {
		return fmt.Errorf("marshal amenities: %w", err)
	}

	query := `
		UPDATE listings
		SET title = $1, description = $2, property_type = $3, price_per_night = $4,
		    currency = $5, max_guests = $6, bedrooms = $7, beds = $8, bathrooms = $9,
		    address = $10, city = $11, country = $12, latitude = $13, longitude = $14,
		    amenities = $15, is_available = $16, updated_at = $17
		WHERE id = $18`

	ct, err := r.pool.Exec(ctx, query,
		l.Title,
		l.Description,
		l.PropertyType,
		l.PricePerNight,
		l.Currency,
		l.MaxGuests,
		l.Bedrooms,
		l.Beds,
		l.Bathrooms,
		l.Address,
		l.City,
		l.Country,
		l.Latitude,
		l.Longitude,
		amenitiesJSON,
		l.IsAvailable,
		time.Now().UTC(),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", l.ID)
	}

	return nil
}

// Delete removes a listing. Bookings and reviews cascade at the schema level.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", id)
	}

	return nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l             domain.Listing
		amenitiesJSON []byte
	)

	err := row.Scan(
		&l.ID,
		&l.HostID,
		&l.Title,
		&l.Slug,
		&l.Description,
		&l.PropertyType,
		&l.PricePerNight,
		&l.Currency,
		&l.MaxGuests,
		&l.Bedrooms,
		&l.Beds,
		&l.Bathrooms,
		&l.Address,
		&l.City,
		&l.Country,
		&l.Latitude,
		&l.Longitude,
		&amenitiesJSON,
		&l.IsAvailable,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalAmenities(amenitiesJSON, &l); err != nil {
		return nil, err
	}

	return &l, nil
}

func unmarshalAmenities(data []byte, l *domain.Listing) error {
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &l.Amenities); err != nil {
			return fmt.Errorf("unmarshal amenities: %w", err)
		}
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	return nil
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isExclusionViolation checks for a PostgreSQL exclusion constraint violation
// (SQLSTATE 23P01), raised by the booking overlap constraint.
func isExclusionViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23P01")
}
