package http

import (
	"crypto/hmac"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Fmukanda/travelapp/internal/service"
	"github.com/Fmukanda/travelapp/pkg/httputil"
	"github.com/Fmukanda/travelapp/pkg/validator"
)

// PaymentHandler handles HTTP requests for payment endpoints.
type PaymentHandler struct {
	payments      *service.PaymentService
	webhookSecret string
	logger        *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler. webhookSecret guards
// the gateway callback endpoint.
func NewPaymentHandler(payments *service.PaymentService, webhookSecret string, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// --- Request DTOs ---

// InitializePaymentRequest is the JSON request body for starting a checkout.
type InitializePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	ReturnURL string `json:"return_url" validate:"omitempty,url"`
}

// VerifyPaymentRequest is the JSON request body for reconciling a payment.
type VerifyPaymentRequest struct {
	TxRef string `json:"tx_ref" validate:"required"`
}

// --- Handlers ---

// InitializePayment handles POST /api/v1/payments/initialize
func (h *PaymentHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req InitializePaymentRequest
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

	pay, err := h.payments.InitializePayment(r.Context(), actorFromRequest(r), service.InitializePaymentInput{
		BookingID: req.BookingID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pay})
}

// VerifyPayment handles POST /api/v1/payments/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req VerifyPaymentRequest
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

	pay, err := h.payments.VerifyPayment(r.Context(), req.TxRef)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pay})
}

// GetBookingPayment handles GET /api/v1/bookings/{id}/payment
func (h *PaymentHandler) GetBookingPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	pay, err := h.payments.GetBookingPayment(r.Context(), actorFromRequest(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pay})
}

// Webhook handles POST /api/v1/payments/webhook. The gateway signs calls
// with a shared secret carried in the Chapa-Signature header.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("Chapa-Signature")
	if h.webhookSecret == "" || !hmac.Equal([]byte(signature), []byte(h.webhookSecret)) {
		h.logger.WarnContext(r.Context(), "webhook signature mismatch")
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid webhook signature"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var evt service.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid webhook body: " + err.Error()},
		})
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), evt); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "ok"}})
}
