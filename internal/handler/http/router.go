package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miservicio/reviews-service/internal/service"
	"github.com/miservicio/reviews-service/pkg/health"
	"github.com/miservicio/reviews-service/pkg/middleware"
)

// NewRouter creates a chi router with all reviews service routes registered.
// Write endpoints require a valid bearer token; provider listings, summaries,
// and the recent feed are public.
func NewRouter(
	reviewService *service.ReviewService,
	contactService *service.ContactService,
	healthHandler *health.Handler,
	validateToken middleware.TokenValidator,
	corsCfg middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("reviews"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	reviewHandler := NewReviewHandler(reviewService, logger)
	contactHandler := NewContactHandler(contactService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public read endpoints
		r.Get("/providers/{id}/reviews", reviewHandler.ListProviderReviews)
		r.Get("/providers/{id}/review-summary", reviewHandler.GetProviderSummary)
		r.Get("/reviews/stats/summary", reviewHandler.GetGlobalSummary)
		r.Get("/reviews/recent", reviewHandler.ListRecent)

		// Authenticated write endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validateToken))

			r.Post("/contact-intents", contactHandler.CreateContactIntent)
			r.Patch("/contact-intents/{id}/responded", contactHandler.MarkResponded)
			r.Post("/reviews", reviewHandler.CreateReview)
			r.Put("/reviews/{id}/photos", reviewHandler.UpdatePhotos)
		})
	})

	return r
}
