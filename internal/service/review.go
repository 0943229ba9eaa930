package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/internal/event"
	"github.com/miservicio/reviews-service/internal/identity"
	"github.com/miservicio/reviews-service/internal/repository"
	apperrors "github.com/miservicio/reviews-service/pkg/errors"
)

// IdentityResolver resolves a user's display identity. Resolution never fails;
// the zero-value fallback is the placeholder identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID int64) identity.Identity
}

// ReviewServiceConfig holds the behavior toggles for the review service.
type ReviewServiceConfig struct {
	// RequireContactIntent gates review creation on prior contact evidence.
	RequireContactIntent bool
}

// ReviewService implements the business logic for reviews: the eligibility
// gate on writes, identity enrichment, and aggregate reads.
type ReviewService struct {
	reviews  repository.ReviewRepository
	contacts repository.ContactIntentRepository
	resolver IdentityResolver
	producer *event.Producer
	logger   *slog.Logger
	cfg      ReviewServiceConfig
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	contacts repository.ContactIntentRepository,
	resolver IdentityResolver,
	producer *event.Producer,
	logger *slog.Logger,
	cfg ReviewServiceConfig,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		contacts: contacts,
		resolver: resolver,
		producer: producer,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateReviewInput holds the parameters for submitting a review.
type CreateReviewInput struct {
	UserID     int64
	ProviderID int64
	Rating     int
	Comment    *string
	Photos     []string
	IP         *string
	UserAgent  *string
}

// CreateReview runs the eligibility gate and persists the review with the
// submitter's display identity denormalized onto the row.
//
// The gate checks, in order: rating validity, contact evidence within the
// window (when required), and the one-review-per-pair window limit. The window
// limit is enforced twice: a friendly precheck here and a guard inside the
// insert itself, so concurrent submissions cannot both land.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.UserID <= 0 {
		return nil, apperrors.Unauthorized("AUTH.MISSING_TOKEN", "authentication required")
	}
	if input.ProviderID <= 0 {
		return nil, apperrors.InvalidInput("REVIEW.INVALID_PROVIDER", "providerId is required")
	}
	if !domain.ValidRating(input.Rating) {
		return nil, apperrors.InvalidInput("REVIEW.BAD_RATING",
			fmt.Sprintf("rating must be between %d and %d", domain.RatingMin, domain.RatingMax))
	}

	comment := input.Comment
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else {
			if utf8.RuneCountInString(trimmed) > domain.MaxCommentLength {
				return nil, apperrors.InvalidInput("REVIEW.COMMENT_TOO_LONG",
					fmt.Sprintf("comment must not exceed %d characters", domain.MaxCommentLength))
			}
			comment = &trimmed
		}
	}

	photos := input.Photos
	if len(photos) > domain.MaxPhotos {
		photos = photos[:domain.MaxPhotos]
	}

	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -domain.ReviewWindowDays)

	if s.cfg.RequireContactIntent {
		hasContact, err := s.contacts.HasRecentContact(ctx, input.UserID, input.ProviderID, windowStart)
		if err != nil {
			return nil, fmt.Errorf("check contact evidence: %w", err)
		}
		if !hasContact {
			return nil, apperrors.Forbidden("REVIEW.NO_CONTACT_INTENT",
				"a recent contact with the provider is required before reviewing")
		}
	}

	count, err := s.reviews.CountInWindow(ctx, input.UserID, input.ProviderID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("check review window: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("REVIEW.WINDOW_LIMIT",
			"you have already reviewed this provider recently")
	}

	id := s.resolver.Resolve(ctx, input.UserID)

	rv := &domain.Review{
		UserID:        input.UserID,
		ProviderID:    input.ProviderID,
		Rating:        input.Rating,
		Comment:       comment,
		Photos:        photos,
		DisplayName:   id.DisplayName,
		DisplayAvatar: id.AvatarURL,
		Verified:      s.cfg.RequireContactIntent,
		IP:            input.IP,
		UserAgent:     input.UserAgent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	rv.Normalize()

	if err := s.reviews.Create(ctx, rv, windowStart); err != nil {
		if errors.Is(err, repository.ErrDuplicateInWindow) {
			return nil, apperrors.Conflict("REVIEW.WINDOW_LIMIT",
				"you have already reviewed this provider recently")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, rv); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.Int64("review_id", rv.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", rv.ID),
		slog.Int64("user_id", rv.UserID),
		slog.Int64("provider_id", rv.ProviderID),
		slog.Int("rating", rv.Rating),
	)

	return rv, nil
}

// ListByProvider returns a page of a provider's reviews, newest first, with
// placeholder identities backfilled from the resolver at read time. Backfill
// enriches the response only; the stored row keeps its placeholder until the
// next write.
func (s *ReviewService) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, int, error) {
	if providerID <= 0 {
		return nil, 0, apperrors.InvalidInput("REVIEW.INVALID_PROVIDER", "providerId is required")
	}

	reviews, total, err := s.reviews.ListByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	for i := range reviews {
		reviews[i].Normalize()
		s.backfillIdentity(ctx, &reviews[i])
	}

	return reviews, total, nil
}

// GetSummary computes aggregate signals over the trailing summary window. A
// nil providerID aggregates across the whole marketplace.
func (s *ReviewService) GetSummary(ctx context.Context, providerID *int64) (*domain.ReviewSummary, error) {
	if providerID != nil && *providerID <= 0 {
		return nil, apperrors.InvalidInput("REVIEW.INVALID_PROVIDER", "providerId is required")
	}

	since := time.Now().UTC().AddDate(0, 0, -domain.SummaryWindowDays)

	summary, err := s.reviews.Summary(ctx, providerID, since)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	return summary, nil
}

// UpdatePhotos replaces a review's photo list. Only the review's author or an
// admin may do so.
func (s *ReviewService) UpdatePhotos(ctx context.Context, reviewID int64, photos []string, callerID int64, role string) (*domain.Review, error) {
	if callerID <= 0 {
		return nil, apperrors.Unauthorized("AUTH.MISSING_TOKEN", "authentication required")
	}
	if len(photos) > domain.MaxPhotos {
		photos = photos[:domain.MaxPhotos]
	}

	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("REVIEW.NOT_FOUND", "review not found")
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	if rv.UserID != callerID && role != domain.RoleAdmin {
		return nil, apperrors.Forbidden("REVIEW.FORBIDDEN", "only the author may update this review")
	}

	updated, err := s.reviews.UpdatePhotos(ctx, reviewID, photos, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("REVIEW.NOT_FOUND", "review not found")
		}
		return nil, fmt.Errorf("update review photos: %w", err)
	}
	updated.Normalize()

	if err := s.producer.PublishReviewPhotosUpdated(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.photos_updated event",
			slog.Int64("review_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review photos updated",
		slog.Int64("review_id", updated.ID),
		slog.Int("photo_count", len(updated.Photos)),
	)

	return updated, nil
}

// Recent returns the newest reviews across all providers, capped at the
// configured maximum.
func (s *ReviewService) Recent(ctx context.Context, limit int) ([]domain.Review, error) {
	if limit <= 0 || limit > domain.MaxRecentReviews {
		limit = domain.MaxRecentReviews
	}

	reviews, err := s.reviews.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}

	for i := range reviews {
		reviews[i].Normalize()
		s.backfillIdentity(ctx, &reviews[i])
	}

	return reviews, nil
}

// backfillIdentity replaces a stored placeholder identity with a freshly
// resolved one when the resolver can do better.
func (s *ReviewService) backfillIdentity(ctx context.Context, rv *domain.Review) {
	if !rv.HasPlaceholderIdentity() {
		return
	}

	id := s.resolver.Resolve(ctx, rv.UserID)
	if id.DisplayName == "" || id.DisplayName == domain.PlaceholderDisplayName {
		return
	}

	rv.DisplayName = id.DisplayName
	rv.DisplayAvatar = id.AvatarURL
}
