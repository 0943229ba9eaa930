package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/internal/service"
	"github.com/miservicio/reviews-service/pkg/httputil"
	"github.com/miservicio/reviews-service/pkg/middleware"
	"github.com/miservicio/reviews-service/pkg/pagination"
	"github.com/miservicio/reviews-service/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateReviewRequest is the JSON request body for submitting a review.
type CreateReviewRequest struct {
	ProviderID int64    `json:"providerId" validate:"required,gt=0"`
	Rating     int      `json:"rating"`
	Comment    *string  `json:"comment"`
	Photos     []string `json:"photos" validate:"omitempty,max=6,dive,url"`
}

// UpdatePhotosRequest is the JSON request body for replacing a review's photos.
type UpdatePhotosRequest struct {
	Photos []string `json:"photos" validate:"required,max=6,dive,url"`
}

type reviewResponse struct {
	Review *domain.Review `json:"review"`
}

type summaryResponse struct {
	Summary *domain.ReviewSummary `json:"summary"`
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
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

	input := service.CreateReviewInput{
		UserID:     middleware.UserIDFromContext(r.Context()),
		ProviderID: req.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Photos:     req.Photos,
		IP:         clientIP(r),
		UserAgent:  userAgent(r),
	}

	rv, err := h.service.CreateReview(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: reviewResponse{Review: rv}})
}

// ListProviderReviews handles GET /api/v1/providers/{id}/reviews
func (h *ReviewHandler) ListProviderReviews(w http.ResponseWriter, r *http.Request) {
	providerID, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)

	reviews, total, err := h.service.ListByProvider(r.Context(), providerID, params.Limit, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pagination.NewResult(reviews, total)})
}

// GetProviderSummary handles GET /api/v1/providers/{id}/review-summary
func (h *ReviewHandler) GetProviderSummary(w http.ResponseWriter, r *http.Request) {
	providerID, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(r.Context(), &providerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summaryResponse{Summary: summary}})
}

// GetGlobalSummary handles GET /api/v1/reviews/stats/summary
func (h *ReviewHandler) GetGlobalSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context(), nil)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summaryResponse{Summary: summary}})
}

// UpdatePhotos handles PUT /api/v1/reviews/{id}/photos
func (h *ReviewHandler) UpdatePhotos(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdatePhotosRequest
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

	ctx := r.Context()
	rv, err := h.service.UpdatePhotos(ctx, reviewID, req.Photos,
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviewResponse{Review: rv}})
}

// ListRecent handles GET /api/v1/reviews/recent
func (h *ReviewHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	reviews, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: pagination.NewResult(reviews, len(reviews))})
}
