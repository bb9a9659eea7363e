package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Fmukanda/travelapp/internal/repository"
	"github.com/Fmukanda/travelapp/internal/service"
	"github.com/Fmukanda/travelapp/pkg/httputil"
	"github.com/Fmukanda/travelapp/pkg/pagination"
	"github.com/Fmukanda/travelapp/pkg/validator"
)

// BookingHandler handles HTTP requests for booking endpoints.
type BookingHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingHandler creates a new booking HTTP handler.
func NewBookingHandler(bookings *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// --- Request DTOs ---

// CreateBookingRequest is the JSON request body for creating a booking. The
// guest is taken from the authenticated caller, total price is derived
// server-side.
type CreateBookingRequest struct {
	ListingID       string `json:"listing_id" validate:"required,uuid"`
	CheckIn         string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestsCount     int    `json:"guests_count" validate:"required,gt=0"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

// UpdateBookingRequest is the JSON request body for updating a pending
// booking. Omitted fields keep their current value.
type UpdateBookingRequest struct {
	CheckIn         *string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut        *string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	GuestsCount     *int    `json:"guests_count" validate:"omitempty,gt=0"`
	SpecialRequests *string `json:"special_requests" validate:"omitempty,max=2000"`
}

// --- Handlers ---

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	checkIn, _ := time.Parse("2006-01-02", req.CheckIn)
	checkOut, _ := time.Parse("2006-01-02", req.CheckOut)

	booking, err := h.bookings.CreateBooking(r.Context(), actorFromRequest(r), service.CreateBookingInput{
		ListingID:       req.ListingID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestsCount:     req.GuestsCount,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: booking})
}

// UpdateBooking handles PUT /api/v1/bookings/{id}
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.UpdateBookingInput{
		GuestsCount:     req.GuestsCount,
		SpecialRequests: req.SpecialRequests,
	}
	if req.CheckIn != nil {
		t, _ := time.Parse("2006-01-02", *req.CheckIn)
		input.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, _ := time.Parse("2006-01-02", *req.CheckOut)
		input.CheckOut = &t
	}

	booking, err := h.bookings.UpdateBooking(r.Context(), actorFromRequest(r), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: booking})
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.BookingFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if q.Get("upcoming") == "true" {
		now := time.Now().UTC()
		filter.UpcomingFrom = &now
	}

	bookings, total, err := h.bookings.ListBookings(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(bookings, total, params))
}

// ListListingBookings handles GET /api/v1/listings/{id}/bookings
func (h *BookingHandler) ListListingBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	filter := repository.BookingFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	bookings, total, err := h.bookings.ListListingBookings(r.Context(), actorFromRequest(r), id.String(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(bookings, total, params))
}

// GetBooking handles GET /api/v1/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), actorFromRequest(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: booking})
}

// ConfirmBooking handles POST /api/v1/bookings/{id}/confirm
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	booking, err := h.bookings.ConfirmBooking(r.Context(), actorFromRequest(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: booking})
}

// CancelBooking handles POST /api/v1/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	booking, err := h.bookings.CancelBooking(r.Context(), actorFromRequest(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: booking})
}
