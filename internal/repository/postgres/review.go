package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/internal/repository"
	"github.com/miservicio/reviews-service/pkg/database"
	apperrors "github.com/miservicio/reviews-service/pkg/errors"
)

// PhotoColumnDialect selects the SQL predicate used to decide whether a review
// "has photos" in summary aggregation. Deployments that migrated the photos
// column to jsonb use the array-length predicate; older text-column schemas
// compare against the literal empty array.
type PhotoColumnDialect string

const (
	PhotoDialectJSONB PhotoColumnDialect = "jsonb"
	PhotoDialectText  PhotoColumnDialect = "text"
)

const reviewColumns = `id, user_id, provider_id, rating, comment, photos, user_name, user_avatar, verified, flagged, ip, user_agent, created_at, updated_at`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool           database.DBTX
	photosPresence string
}

// NewReviewRepository creates a new PostgreSQL-backed review repository. The
// dialect fixes the photo-presence predicate for summary queries at
// construction time.
func NewReviewRepository(pool database.DBTX, dialect PhotoColumnDialect) *ReviewRepository {
	presence := `jsonb_array_length(photos) > 0`
	if dialect == PhotoDialectText {
		presence = `photos::text <> '[]'`
	}
	return &ReviewRepository{pool: pool, photosPresence: presence}
}

// Create inserts the review only if the user has not reviewed the provider
// since windowStart. The guard runs inside the insert statement so concurrent
// submissions for the same pair cannot both succeed.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review, windowStart time.Time) error {
	photosJSON, err := json.Marshal(rv.Photos)
	if err != nil {
		return fmt.Errorf("marshal photos: %w", err)
	}

	query := `
		INSERT INTO reviews (user_id, provider_id, rating, comment, photos, user_name, user_avatar, verified, flagged, ip, user_agent, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE NOT EXISTS (
			SELECT 1 FROM reviews
			WHERE user_id = $1 AND provider_id = $2 AND created_at >= $14
		)
		RETURNING id`

	err = r.pool.QueryRow(ctx, query,
		rv.UserID,
		rv.ProviderID,
		rv.Rating,
		rv.Comment,
		photosJSON,
		rv.DisplayName,
		rv.DisplayAvatar,
		rv.Verified,
		rv.Flagged,
		rv.IP,
		rv.UserAgent,
		rv.CreatedAt,
		rv.UpdatedAt,
		windowStart,
	).Scan(&rv.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrDuplicateInWindow
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a single review.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return rv, nil
}

// CountInWindow counts the user's reviews for the provider since the given instant.
func (r *ReviewRepository) CountInWindow(ctx context.Context, userID, providerID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM reviews
		WHERE user_id = $1 AND provider_id = $2 AND created_at >= $3`

	var count int

	err := r.pool.QueryRow(ctx, query, userID, providerID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reviews in window: %w", err)
	}

	return count, nil
}

// ListByProvider returns paginated reviews for a provider, newest first, along
// with the total count.
func (r *ReviewRepository) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, int, error) {
	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListByProvider", query)

	rows, err := r.pool.Query(ctx, query, providerID, limit, offset)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var totalCount int
	reviews := make([]domain.Review, 0)

	for rows.Next() {
		var (
			rv         domain.Review
			photosJSON []byte
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.UserID,
			&rv.ProviderID,
			&rv.Rating,
			&rv.Comment,
			&photosJSON,
			&rv.DisplayName,
			&rv.DisplayAvatar,
			&rv.Verified,
			&rv.Flagged,
			&rv.IP,
			&rv.UserAgent,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		rv.Photos = decodePhotos(photosJSON)
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	end(nil)
	return reviews, totalCount, nil
}

// Summary computes count, average rating, and the share of reviews carrying
// photos over reviews created at or after since. A nil providerID aggregates
// across all providers.
func (r *ReviewRepository) Summary(ctx context.Context, providerID *int64, since time.Time) (*domain.ReviewSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(rating), 0),
		       COALESCE(AVG(CASE WHEN ` + r.photosPresence + ` THEN 1.0 ELSE 0.0 END), 0)
		FROM reviews
		WHERE created_at >= $1 AND ($2::bigint IS NULL OR provider_id = $2)`

	ctx, end := database.TraceQuery(ctx, "Summary", query)

	var (
		summary    domain.ReviewSummary
		photosFrac float64
	)

	err := r.pool.QueryRow(ctx, query, since, providerID).Scan(
		&summary.Count,
		&summary.AvgRating,
		&photosFrac,
	)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	// Round average to one decimal place and the photo share to an integer percentage.
	summary.AvgRating = math.Round(summary.AvgRating*10) / 10
	summary.PhotosRate = int(math.Round(photosFrac * 100))

	return &summary, nil
}

// UpdatePhotos replaces the photo list and returns the updated row.
func (r *ReviewRepository) UpdatePhotos(ctx context.Context, id int64, photos []string, at time.Time) (*domain.Review, error) {
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, fmt.Errorf("marshal photos: %w", err)
	}

	query := `
		UPDATE reviews
		SET photos = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + reviewColumns

	rv, err := scanReview(r.pool.QueryRow(ctx, query, photosJSON, at, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update review photos: %w", err)
	}

	return rv, nil
}

// Recent returns the newest reviews across all providers.
func (r *ReviewRepository) Recent(ctx context.Context, limit int) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)

	for rows.Next() {
		var (
			rv         domain.Review
			photosJSON []byte
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.UserID,
			&rv.ProviderID,
			&rv.Rating,
			&rv.Comment,
			&photosJSON,
			&rv.DisplayName,
			&rv.DisplayAvatar,
			&rv.Verified,
			&rv.Flagged,
			&rv.IP,
			&rv.UserAgent,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}

		rv.Photos = decodePhotos(photosJSON)
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		rv         domain.Review
		photosJSON []byte
	)

	if err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.ProviderID,
		&rv.Rating,
		&rv.Comment,
		&photosJSON,
		&rv.DisplayName,
		&rv.DisplayAvatar,
		&rv.Verified,
		&rv.Flagged,
		&rv.IP,
		&rv.UserAgent,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rv.Photos = decodePhotos(photosJSON)
	return &rv, nil
}

// decodePhotos unmarshals the stored photos column. Malformed or empty values
// degrade to an empty list rather than failing the read.
func decodePhotos(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var photos []string
	if err := json.Unmarshal(raw, &photos); err != nil || photos == nil {
		return []string{}
	}

	return photos
}
