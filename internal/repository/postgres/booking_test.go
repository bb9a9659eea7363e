package postgres

import (
	"context"
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

func newBookingRepo(t *testing.T) (*BookingRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewBookingRepository(mock), mock
}

func sampleBooking() *domain.Booking {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Booking{
		ID:              "bk-001",
		ListingID:       "lst-001",
		GuestID:         "guest-001",
		CheckIn:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		GuestsCount:     2,
		TotalPrice:      30000,
		Currency:        "USD",
		Status:          domain.BookingStatusPending,
		SpecialRequests: "late check-in",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func bookingRows(b *domain.Booking, total int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "listing_id", "guest_id", "check_in", "check_out", "guests_count",
		"total_price", "currency", "status", "special_requests", "created_at", "updated_at",
		"total_count",
	}).AddRow(
		b.ID, b.ListingID, b.GuestID, b.CheckIn, b.CheckOut, b.GuestsCount,
		b.TotalPrice, b.Currency, b.Status, b.SpecialRequests, b.CreatedAt, b.UpdatedAt,
		total,
	)
}

// --- Create ---

func TestBookingRepository_Create_Success(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := sampleBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(
			b.ID, b.ListingID, b.GuestID, b.CheckIn, b.CheckOut, b.GuestsCount,
			b.TotalPrice, b.Currency, b.Status, b.SpecialRequests, b.CreatedAt, b.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create_DateOverlapConflict(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := sampleBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(
			b.ID, b.ListingID, b.GuestID, b.CheckIn, b.CheckOut, b.GuestsCount,
			b.TotalPrice, b.Currency, b.Status, b.SpecialRequests, b.CreatedAt, b.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: conflicting key value violates exclusion constraint (SQLSTATE 23P01)"))

	err := repo.Create(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID ---

func TestBookingRepository_GetByID_Success(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := sampleBooking()

	rows := pgxmock.NewRows([]string{
		"id", "listing_id", "guest_id", "check_in", "check_out", "guests_count",
		"total_price", "currency", "status", "special_requests", "created_at", "updated_at",
	}).AddRow(
		b.ID, b.ListingID, b.GuestID, b.CheckIn, b.CheckOut, b.GuestsCount,
		b.TotalPrice, b.Currency, b.Status, b.SpecialRequests, b.CreatedAt, b.UpdatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id =").
		WithArgs(b.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.TotalPrice, got.TotalPrice)
	assert.Equal(t, domain.BookingStatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- List ---

func TestBookingRepository_List_ActorVisibility(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := sampleBooking()
	actorID := "guest-001"

	mock.ExpectQuery(`SELECT (.+) FROM bookings b\s+JOIN listings l`).
		WithArgs(actorID, 20, 0).
		WillReturnRows(bookingRows(b, 1))

	got, total, err := repo.List(context.Background(), repository.BookingFilter{
		ActorID: &actorID,
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_List_StatusAndUpcomingFilters(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := sampleBooking()
	actorID := "guest-001"
	status := domain.BookingStatusConfirmed
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM bookings b\s+JOIN listings l`).
		WithArgs(actorID, status, from, 10, 0).
		WillReturnRows(bookingRows(b, 1))

	got, total, err := repo.List(context.Background(), repository.BookingFilter{
		ActorID:      &actorID,
		Status:       &status,
		UpcomingFrom: &from,
		Page:         1,
		PerPage:      10,
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_List_Empty(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	actorID := "nobody"

	mock.ExpectQuery(`SELECT (.+) FROM bookings b\s+JOIN listings l`).
		WithArgs(actorID, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "listing_id", "guest_id", "check_in", "check_out", "guests_count",
			"total_price", "currency", "status", "special_requests", "created_at", "updated_at",
			"total_count",
		}))

	got, total, err := repo.List(context.Background(), repository.BookingFilter{ActorID: &actorID})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- UpdateStatus ---

func TestBookingRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(domain.BookingStatusConfirmed, pgxmock.AnyArg(), "bk-001", domain.BookingStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), "bk-001", domain.BookingStatusPending, domain.BookingStatusConfirmed)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdateStatus_StatusMoved(t *testing.T) {
	// The booking left pending between the read and the write, so the
	// guarded UPDATE matches no row and the transition must fail.
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(domain.BookingStatusConfirmed, pgxmock.AnyArg(), "bk-001", domain.BookingStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "bk-001", domain.BookingStatusPending, domain.BookingStatusConfirmed)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Update ---

func TestBookingRepository_Update_Success(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := &domain.Booking{
		ID:          "bk-001",
		CheckIn:     time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
		GuestsCount: 3,
		TotalPrice:  40000,
		UpdatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("UPDATE bookings").
		WithArgs(b.CheckIn, b.CheckOut, b.GuestsCount, b.TotalPrice, b.SpecialRequests, b.UpdatedAt, b.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Update_OverlapConflict(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	b := &domain.Booking{ID: "bk-001", GuestsCount: 2, UpdatedAt: time.Now().UTC()}

	mock.ExpectExec("UPDATE bookings").
		WithArgs(b.CheckIn, b.CheckOut, b.GuestsCount, b.TotalPrice, b.SpecialRequests, b.UpdatedAt, b.ID).
		WillReturnError(errors.New("ERROR: conflicting key value violates exclusion constraint \"bookings_no_overlap\" (SQLSTATE 23P01)"))

	err := repo.Update(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- HasOverlap ---

func TestBookingRepository_HasOverlap_True(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	checkIn := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("lst-001", checkIn, checkOut, "").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasOverlap(context.Background(), "lst-001", checkIn, checkOut, "")
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_HasOverlap_False(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	checkIn := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("lst-001", checkIn, checkOut, "bk-001").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	overlap, err := repo.HasOverlap(context.Background(), "lst-001", checkIn, checkOut, "bk-001")
	require.NoError(t, err)
	assert.False(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- MarkCompleted ---

func TestBookingRepository_MarkCompleted(t *testing.T) {
	repo, mock := newBookingRepo(t)
	defer mock.Close()

	before := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(domain.BookingStatusCompleted, pgxmock.AnyArg(), domain.BookingStatusConfirmed, before).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.MarkCompleted(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
