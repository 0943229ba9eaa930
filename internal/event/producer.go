package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/miservicio/reviews-service/internal/domain"
	pkgkafka "github.com/miservicio/reviews-service/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewCreated        = "reviews.review.created"
	TopicReviewPhotosUpdated  = "reviews.review.photos_updated"
	TopicContactIntentCreated = "reviews.contact_intent.created"
	TopicContactIntentReplied = "reviews.contact_intent.responded"
)

// Aggregate type constants.
const (
	AggregateTypeReview        = "review"
	AggregateTypeContactIntent = "contact_intent"
)

// Source identifier for events originating from this service.
const SourceReviewsService = "reviews-service"

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"user_id"`
	ProviderID int64    `json:"provider_id"`
	Rating     int      `json:"rating"`
	Comment    *string  `json:"comment,omitempty"`
	Photos     []string `json:"photos"`
	UserName   string   `json:"user_name"`
	Verified   bool     `json:"verified"`
}

// ReviewPhotosUpdatedData is the payload for a review.photos_updated event.
type ReviewPhotosUpdatedData struct {
	ReviewID   int64    `json:"review_id"`
	ProviderID int64    `json:"provider_id"`
	Photos     []string `json:"photos"`
}

// ContactIntentCreatedData is the payload for a contact_intent.created event.
type ContactIntentCreatedData struct {
	ID         string `json:"id"`
	UserID     int64  `json:"user_id"`
	ProviderID int64  `json:"provider_id"`
	Channel    string `json:"channel"`
}

// ContactIntentRespondedData is the payload for a contact_intent.responded event.
type ContactIntentRespondedData struct {
	ID          string    `json:"id"`
	ProviderID  int64     `json:"provider_id"`
	RespondedAt time.Time `json:"responded_at"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the reviews service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, rv *domain.Review) error {
	data := ReviewCreatedData{
		ID:         rv.ID,
		UserID:     rv.UserID,
		ProviderID: rv.ProviderID,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
		Photos:     rv.Photos,
		UserName:   rv.DisplayName,
		Verified:   rv.Verified,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, strconv.FormatInt(rv.ID, 10), AggregateTypeReview, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.Int64("review_id", rv.ID),
		slog.Int64("provider_id", rv.ProviderID),
	)

	return nil
}

// PublishReviewPhotosUpdated publishes a review.photos_updated event.
func (p *Producer) PublishReviewPhotosUpdated(ctx context.Context, rv *domain.Review) error {
	data := ReviewPhotosUpdatedData{
		ReviewID:   rv.ID,
		ProviderID: rv.ProviderID,
		Photos:     rv.Photos,
	}

	event, err := pkgkafka.NewEvent(TopicReviewPhotosUpdated, strconv.FormatInt(rv.ID, 10), AggregateTypeReview, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create review.photos_updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewPhotosUpdated, event); err != nil {
		return fmt.Errorf("publish review.photos_updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.photos_updated event",
		slog.Int64("review_id", rv.ID),
	)

	return nil
}

// PublishContactIntentCreated publishes a contact_intent.created event.
func (p *Producer) PublishContactIntentCreated(ctx context.Context, ci *domain.ContactIntent) error {
	data := ContactIntentCreatedData{
		ID:         ci.ID,
		UserID:     ci.UserID,
		ProviderID: ci.ProviderID,
		Channel:    string(ci.Channel),
	}

	event, err := pkgkafka.NewEvent(TopicContactIntentCreated, ci.ID, AggregateTypeContactIntent, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create contact_intent.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicContactIntentCreated, event); err != nil {
		return fmt.Errorf("publish contact_intent.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published contact_intent.created event",
		slog.String("contact_intent_id", ci.ID),
		slog.Int64("provider_id", ci.ProviderID),
	)

	return nil
}

// PublishContactIntentResponded publishes a contact_intent.responded event.
func (p *Producer) PublishContactIntentResponded(ctx context.Context, ci *domain.ContactIntent) error {
	respondedAt := time.Now().UTC()
	if ci.RespondedAt != nil {
		respondedAt = *ci.RespondedAt
	}

	data := ContactIntentRespondedData{
		ID:          ci.ID,
		ProviderID:  ci.ProviderID,
		RespondedAt: respondedAt,
	}

	event, err := pkgkafka.NewEvent(TopicContactIntentReplied, ci.ID, AggregateTypeContactIntent, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create contact_intent.responded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicContactIntentReplied, event); err != nil {
		return fmt.Errorf("publish contact_intent.responded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published contact_intent.responded event",
		slog.String("contact_intent_id", ci.ID),
	)

	return nil
}
