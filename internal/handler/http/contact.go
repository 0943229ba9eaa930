package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/internal/service"
	"github.com/miservicio/reviews-service/pkg/httputil"
	"github.com/miservicio/reviews-service/pkg/middleware"
	"github.com/miservicio/reviews-service/pkg/validator"
)

// ContactHandler handles HTTP requests for contact intent endpoints.
type ContactHandler struct {
	service *service.ContactService
	logger  *slog.Logger
}

// NewContactHandler creates a new contact intent HTTP handler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateContactIntentRequest is the JSON request body for recording a contact.
type CreateContactIntentRequest struct {
	ProviderID     int64   `json:"providerId" validate:"required,gt=0"`
	Channel        string  `json:"channel" validate:"required,oneof=whatsapp form"`
	MessagePreview *string `json:"messagePreview"`
}

type contactIntentResponse struct {
	ContactIntent *domain.ContactIntent `json:"contactIntent"`
}

// CreateContactIntent handles POST /api/v1/contact-intents
func (h *ContactHandler) CreateContactIntent(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateContactIntentRequest
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

	input := service.CreateContactIntentInput{
		UserID:         middleware.UserIDFromContext(r.Context()),
		ProviderID:     req.ProviderID,
		Channel:        domain.ContactChannel(req.Channel),
		MessagePreview: req.MessagePreview,
		IP:             clientIP(r),
		Device:         userAgent(r),
	}

	ci, err := h.service.CreateContactIntent(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: contactIntentResponse{ContactIntent: ci}})
}

// MarkResponded handles PATCH /api/v1/contact-intents/{id}/responded
func (h *ContactHandler) MarkResponded(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ci, err := h.service.MarkResponded(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: contactIntentResponse{ContactIntent: ci}})
}
