package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/pkg/database"
	apperrors "github.com/miservicio/reviews-service/pkg/errors"
)

// ContactIntentRepository implements repository.ContactIntentRepository using PostgreSQL.
type ContactIntentRepository struct {
	pool database.DBTX
}

// NewContactIntentRepository creates a new PostgreSQL-backed contact intent repository.
func NewContactIntentRepository(pool database.DBTX) *ContactIntentRepository {
	return &ContactIntentRepository{pool: pool}
}

// Create inserts a new contact intent.
func (r *ContactIntentRepository) Create(ctx context.Context, ci *domain.ContactIntent) error {
	query := `
		INSERT INTO contact_intents (id, user_id, provider_id, channel, message_preview, ip, device, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		ci.ID,
		ci.UserID,
		ci.ProviderID,
		ci.Channel,
		ci.MessagePreview,
		ci.IP,
		ci.Device,
		ci.CreatedAt,
		ci.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact intent: %w", err)
	}

	return nil
}

// MarkResponded sets the responded timestamp and returns the updated row.
// Calling it again simply overwrites the previous timestamp.
func (r *ContactIntentRepository) MarkResponded(ctx context.Context, id string, at time.Time) (*domain.ContactIntent, error) {
	query := `
		UPDATE contact_intents
		SET responded_at = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, user_id, provider_id, channel, message_preview, responded_at, ip, device, created_at, updated_at`

	var ci domain.ContactIntent

	err := r.pool.QueryRow(ctx, query, at, at, id).Scan(
		&ci.ID,
		&ci.UserID,
		&ci.ProviderID,
		&ci.Channel,
		&ci.MessagePreview,
		&ci.RespondedAt,
		&ci.IP,
		&ci.Device,
		&ci.CreatedAt,
		&ci.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("mark contact intent responded: %w", err)
	}

	return &ci, nil
}

// HasRecentContact reports whether the user contacted the provider at or after
// the given instant.
func (r *ContactIntentRepository) HasRecentContact(ctx context.Context, userID, providerID int64, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM contact_intents
			WHERE user_id = $1 AND provider_id = $2 AND created_at >= $3
		)`

	var exists bool

	err := r.pool.QueryRow(ctx, query, userID, providerID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recent contact: %w", err)
	}

	return exists, nil
}
