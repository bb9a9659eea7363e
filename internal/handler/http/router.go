package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Fmukanda/travelapp/internal/service"
	"github.com/Fmukanda/travelapp/pkg/health"
	"github.com/Fmukanda/travelapp/pkg/middleware"
)

// RouterConfig bundles the dependencies of the HTTP API.
type RouterConfig struct {
	Listings      *service.ListingService
	Bookings      *service.BookingService
	Reviews       *service.ReviewService
	Payments      *service.PaymentService
	Health        *health.Handler
	TokenCheck    middleware.TokenValidator
	WebhookSecret string
	CORS          middleware.CORSConfig
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("travelapp"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	listingHandler := NewListingHandler(cfg.Listings, cfg.Reviews, cfg.Logger)
	bookingHandler := NewBookingHandler(cfg.Bookings, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Logger)
	paymentHandler := NewPaymentHandler(cfg.Payments, cfg.WebhookSecret, cfg.Logger)

	auth := middleware.Auth(cfg.TokenCheck)
	optionalAuth := middleware.OptionalAuth(cfg.TokenCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/listings", func(r chi.Router) {
			// Public reads; writes and the bookings sub-resource need auth.
			r.With(optionalAuth).Get("/", listingHandler.SearchListings)
			r.With(optionalAuth).Get("/{id}", listingHandler.GetListing)
			r.With(optionalAuth).Get("/{id}/reviews", reviewHandler.ListListingReviews)

			r.With(auth).Post("/", listingHandler.CreateListing)
			r.With(auth).Put("/{id}", listingHandler.UpdateListing)
			r.With(auth).Delete("/{id}", listingHandler.DeleteListing)
			r.With(auth).Get("/{id}/bookings", bookingHandler.ListListingBookings)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(auth)

			r.Post("/", bookingHandler.CreateBooking)
			r.Get("/", bookingHandler.ListBookings)
			r.Get("/{id}", bookingHandler.GetBooking)
			r.Put("/{id}", bookingHandler.UpdateBooking)
			r.Post("/{id}/cancel", bookingHandler.CancelBooking)
			r.Post("/{id}/confirm", bookingHandler.ConfirmBooking)
			r.Get("/{id}/payment", paymentHandler.GetBookingPayment)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.With(optionalAuth).Get("/", reviewHandler.ListReviews)
			r.With(auth).Post("/", reviewHandler.CreateReview)
			r.With(auth).Put("/{id}", reviewHandler.UpdateReview)
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(auth).Post("/initialize", paymentHandler.InitializePayment)
			r.With(auth).Post("/verify", paymentHandler.VerifyPayment)
			// Signature-checked, called by the gateway.
			r.Post("/webhook", paymentHandler.Webhook)
		})
	})

	return r
}
