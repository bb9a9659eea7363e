package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Fmukanda/travelapp/internal/repository"
	"github.com/Fmukanda/travelapp/internal/service"
	"github.com/Fmukanda/travelapp/pkg/httputil"
	"github.com/Fmukanda/travelapp/pkg/pagination"
	"github.com/Fmukanda/travelapp/pkg/validator"
)

// ListingHandler handles HTTP requests for listing endpoints.
type ListingHandler struct {
	listings *service.ListingService
	reviews  *service.ReviewService
	logger   *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler.
func NewListingHandler(listings *service.ListingService, reviews *service.ReviewService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		reviews:  reviews,
		logger:   logger,
	}
}

// --- Request DTOs ---

// CreateListingRequest is the JSON request body for creating a listing.
type CreateListingRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	PropertyType  string   `json:"property_type" validate:"required,oneof=apartment house villa condo cabin hotel"`
	PricePerNight int64    `json:"price_per_night" validate:"required,gt=0"`
	Currency      string   `json:"currency" validate:"required,len=3"`
	MaxGuests     int      `json:"max_guests" validate:"required,gt=0"`
	Bedrooms      int      `json:"bedrooms" validate:"gte=0"`
	Beds          int      `json:"beds" validate:"gte=0"`
	Bathrooms     int      `json:"bathrooms" validate:"gte=0"`
	Address       string   `json:"address" validate:"max=500"`
	City          string   `json:"city" validate:"required,max=100"`
	Country       string   `json:"country" validate:"required,max=100"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Amenities     []string `json:"amenities"`
}

// UpdateListingRequest is the JSON request body for updating a listing.
type UpdateListingRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=5000"`
	PricePerNight *int64   `json:"price_per_night" validate:"omitempty,gt=0"`
	MaxGuests     *int     `json:"max_guests" validate:"omitempty,gt=0"`
	Amenities     []string `json:"amenities"`
	IsAvailable   *bool    `json:"is_available"`
}

// listingDetail is the GET /listings/{id} response: the listing enriched
// with its review aggregate.
type listingDetail struct {
	Listing       any     `json:"listing"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// --- Handlers ---

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateListingRequest
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

	listing, err := h.listings.CreateListing(r.Context(), actorFromRequest(r), service.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		PropertyType:  req.PropertyType,
		PricePerNight: req.PricePerNight,
		Currency:      req.Currency,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Beds:          req.Beds,
		Bathrooms:     req.Bathrooms,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Amenities:     req.Amenities,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: listing})
}

// SearchListings handles GET /api/v1/listings
func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ListingFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	q := r.URL.Query()
	if v := q.Get("city"); v != "" {
		filter.City = &v
	}
	if v := q.Get("country"); v != "" {
		filter.Country = &v
	}
	if v := q.Get("property_type"); v != "" {
		filter.PropertyType = &v
	}
	if v := q.Get("min_price"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil || p < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_price must be a non-negative integer"},
			})
			return
		}
		filter.MinPrice = &p
	}
	if v := q.Get("max_price"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil || p < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "max_price must be a non-negative integer"},
			})
			return
		}
		filter.MaxPrice = &p
	}
	if v := q.Get("guests"); v != "" {
		g, err := strconv.Atoi(v)
		if err != nil || g < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "guests must be a positive integer"},
			})
			return
		}
		filter.MinGuests = &g
	}
	if q.Get("available") == "true" {
		filter.AvailableOnly = true
	}

	listings, total, err := h.listings.SearchListings(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(listings, total, params))
}

// GetListing handles GET /api/v1/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	listing, err := h.listings.GetListing(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	summary, err := h.reviews.Summary(r.Context(), listing.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listingDetail{
		Listing:       listing,
		AverageRating: summary.AverageRating,
		ReviewCount:   summary.TotalCount,
	}})
}

// UpdateListing handles PUT /api/v1/listings/{id}
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateListingRequest
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

	listing, err := h.listings.UpdateListing(r.Context(), actorFromRequest(r), id.String(), service.UpdateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Amenities:     req.Amenities,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// DeleteListing handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.listings.DeleteListing(r.Context(), actorFromRequest(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
