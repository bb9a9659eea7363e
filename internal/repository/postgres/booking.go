package postgres

import (
	"context"
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

// BookingRepository implements repository.BookingRepository using PostgreSQL.
type BookingRepository struct {
	pool database.DBTX
}

// NewBookingRepository creates a new PostgreSQL-backed booking repository.
func NewBookingRepository(pool database.DBTX) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `id, listing_id, guest_id, check_in, check_out, guests_count,
	total_price, currency, status, special_requests, created_at, updated_at`

// Create inserts a new booking. The overlap exclusion constraint on
// (listing_id, date range) for active bookings surfaces here as a conflict.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.ListingID,
		b.GuestID,
		b.CheckIn,
		b.CheckOut,
		b.GuestsCount,
		b.TotalPrice,
		b.Currency,
		b.Status,
		b.SpecialRequests,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return apperrors.Conflict("listing is already booked for these dates")
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by its ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b domain.Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.ListingID,
		&b.GuestID,
		&b.CheckIn,
		&b.CheckOut,
		&b.GuestsCount,
		&b.TotalPrice,
		&b.Currency,
		&b.Status,
		&b.SpecialRequests,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("booking", id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return &b, nil
}

// List returns bookings matching the filter with the total count. When
// ActorID is set, the result is scoped to bookings where the actor is the
// guest or the host of the referenced listing.
func (r *BookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"(b.guest_id = $%d OR l.host_id = $%d)", argIndex, argIndex))
		args = append(args, *filter.ActorID)
		argIndex++
	}

	if filter.ListingID != nil {
		conditions = append(conditions, fmt.Sprintf("b.listing_id = $%d", argIndex))
		args = append(args, *filter.ListingID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.UpcomingFrom != nil {
		conditions = append(conditions, fmt.Sprintf("b.check_in >= $%d", argIndex))
		args = append(args, *filter.UpcomingFrom)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.listing_id, b.guest_id, b.check_in, b.check_out, b.guests_count,
		       b.total_price, b.currency, b.status, b.special_requests, b.created_at, b.updated_at,
		       count(*) OVER() AS total_count
		FROM bookings b
		JOIN listings l ON l.id = b.listing_id
		%s
		ORDER BY b.check_in DESC
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
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var (
		bookings   = make([]domain.Booking, 0)
		totalCount int
	)

	for rows.Next() {
		var b domain.Booking

		if err := rows.Scan(
			&b.ID,
			&b.ListingID,
			&b.GuestID,
			&b.CheckIn,
			&b.CheckOut,
			&b.GuestsCount,
			&b.TotalPrice,
			&b.Currency,
			&b.Status,
			&b.SpecialRequests,
			&b.CreatedAt,
			&b.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking row: %w", err)
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, totalCount, nil
}

// Update rewrites the mutable fields of a booking. The overlap exclusion
// constraint applies to the new dates just as it does on insert.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET check_in = $1, check_out = $2, guests_count = $3,
		    total_price = $4, special_requests = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		b.CheckIn,
		b.CheckOut,
		b.GuestsCount,
		b.TotalPrice,
		b.SpecialRequests,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return apperrors.Conflict("listing is already booked for these dates")
		}
		return fmt.Errorf("update booking: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("booking", b.ID)
	}

	return nil
}

// UpdateStatus transitions a booking from one status to another. The current
// status is part of the predicate, so of two concurrent transitions only one
// can win.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	ct, err := r.pool.Exec(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.InvalidTransition(from, to)
	}

	return nil
}

// HasOverlap reports whether any pending or confirmed booking for the listing
// intersects the half-open [checkIn, checkOut) range.
func (r *BookingRepository) HasOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE listing_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND check_in < $3
			  AND check_out > $2
			  AND id <> $4
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, listingID, checkIn, checkOut, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}

	return exists, nil
}

// MarkCompleted transitions confirmed bookings whose check-out is on or
// before the given date to completed.
func (r *BookingRepository) MarkCompleted(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE status = $3 AND check_out <= $4`

	ct, err := r.pool.Exec(ctx, query,
		domain.BookingStatusCompleted,
		time.Now().UTC(),
		domain.BookingStatusConfirmed,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("mark bookings completed: %w", err)
	}

	return ct.RowsAffected(), nil
}
