package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/pkg/database"
)

// ProfileRepository reads the user_profiles table owned by the identity
// platform. This service never writes to it.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile reader.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByUserID returns the profile for the user, or nil when none exists.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `
		SELECT user_id, first_name, last_name, avatar_url
		FROM user_profiles
		WHERE user_id = $1`

	var p domain.Profile

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	return &p, nil
}
