package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/internal/event"
	"github.com/miservicio/reviews-service/internal/repository"
	apperrors "github.com/miservicio/reviews-service/pkg/errors"
)

// ContactService implements the business logic for the contact ledger.
type ContactService struct {
	repo     repository.ContactIntentRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewContactService creates a new contact intent service.
func NewContactService(repo repository.ContactIntentRepository, producer *event.Producer, logger *slog.Logger) *ContactService {
	return &ContactService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateContactIntentInput holds the parameters for recording a contact intent.
type CreateContactIntentInput struct {
	UserID         int64
	ProviderID     int64
	Channel        domain.ContactChannel
	MessagePreview *string
	IP             *string
	Device         *string
}

// CreateContactIntent records that a user reached out to a provider. The
// message preview is truncated, never rejected, so an over-long first message
// does not lose the contact evidence.
func (s *ContactService) CreateContactIntent(ctx context.Context, input CreateContactIntentInput) (*domain.ContactIntent, error) {
	if input.UserID <= 0 {
		return nil, apperrors.Unauthorized("AUTH.MISSING_TOKEN", "authentication required")
	}
	if input.ProviderID <= 0 {
		return nil, apperrors.InvalidInput("CONTACT_INTENT.INVALID_PROVIDER", "providerId is required")
	}
	if !input.Channel.Valid() {
		return nil, apperrors.InvalidInput("CONTACT_INTENT.INVALID_CHANNEL", "channel must be whatsapp or form")
	}

	preview := input.MessagePreview
	if preview != nil {
		trimmed := strings.TrimSpace(*preview)
		if trimmed == "" {
			preview = nil
		} else {
			if runes := []rune(trimmed); len(runes) > domain.MaxMessagePreviewLength {
				trimmed = string(runes[:domain.MaxMessagePreviewLength])
			}
			preview = &trimmed
		}
	}

	now := time.Now().UTC()
	ci := &domain.ContactIntent{
		ID:             uuid.New().String(),
		UserID:         input.UserID,
		ProviderID:     input.ProviderID,
		Channel:        input.Channel,
		MessagePreview: preview,
		IP:             input.IP,
		Device:         input.Device,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, ci); err != nil {
		return nil, fmt.Errorf("create contact intent: %w", err)
	}

	if err := s.producer.PublishContactIntentCreated(ctx, ci); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contact_intent.created event",
			slog.String("contact_intent_id", ci.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "contact intent recorded",
		slog.String("contact_intent_id", ci.ID),
		slog.Int64("user_id", ci.UserID),
		slog.Int64("provider_id", ci.ProviderID),
		slog.String("channel", string(ci.Channel)),
	)

	return ci, nil
}

// MarkResponded records that the provider replied to the contact. Repeated
// calls overwrite the previous timestamp.
func (s *ContactService) MarkResponded(ctx context.Context, id string) (*domain.ContactIntent, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("CONTACT_INTENT.INVALID_ID", "contact intent id is required")
	}

	ci, err := s.repo.MarkResponded(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("CONTACT_INTENT.NOT_FOUND", "contact intent not found")
		}
		return nil, fmt.Errorf("mark contact intent responded: %w", err)
	}

	if err := s.producer.PublishContactIntentResponded(ctx, ci); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contact_intent.responded event",
			slog.String("contact_intent_id", ci.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "contact intent marked responded",
		slog.String("contact_intent_id", ci.ID),
		slog.Int64("provider_id", ci.ProviderID),
	)

	return ci, nil
}
