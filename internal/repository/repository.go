package repository

import (
	"context"
	"errors"
	"time"

	"github.com/miservicio/reviews-service/internal/domain"
)

// ErrDuplicateInWindow is returned by ReviewRepository.Create when the insert
// was rejected because a review for the same (user, provider) pair already
// exists within the rolling window. The guard lives in the insert statement
// itself so two concurrent submissions cannot both land.
var ErrDuplicateInWindow = errors.New("review already exists within window")

// ContactIntentRepository persists the contact ledger.
type ContactIntentRepository interface {
	// Create inserts a new contact intent.
	Create(ctx context.Context, ci *domain.ContactIntent) error

	// MarkResponded sets the responded timestamp, overwriting any prior value.
	// Returns errors.ErrNotFound (pkg sentinel) if the id is unknown.
	MarkResponded(ctx context.Context, id string, at time.Time) (*domain.ContactIntent, error)

	// HasRecentContact reports whether at least one contact intent exists for
	// the pair with createdAt >= since.
	HasRecentContact(ctx context.Context, userID, providerID int64, since time.Time) (bool, error)
}

// ReviewRepository persists reviews and computes aggregates.
type ReviewRepository interface {
	// Create inserts the review iff no review for the same (user, provider)
	// pair exists with createdAt >= windowStart. Returns ErrDuplicateInWindow
	// when the window guard rejects the insert. On success the assigned id is
	// written back onto the review.
	Create(ctx context.Context, rv *domain.Review, windowStart time.Time) error

	// GetByID retrieves a single review.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// CountInWindow counts reviews for the pair with createdAt >= since.
	CountInWindow(ctx context.Context, userID, providerID int64, since time.Time) (int, error)

	// ListByProvider returns a page of reviews ordered by createdAt descending,
	// along with the total count for the provider.
	ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, int, error)

	// Summary computes aggregate signals over reviews with createdAt >= since.
	// A nil providerID computes the global summary.
	Summary(ctx context.Context, providerID *int64, since time.Time) (*domain.ReviewSummary, error)

	// UpdatePhotos replaces the photo list wholesale and bumps updatedAt,
	// returning the updated row.
	UpdatePhotos(ctx context.Context, id int64, photos []string, at time.Time) (*domain.Review, error)

	// Recent returns the newest reviews across all providers.
	Recent(ctx context.Context, limit int) ([]domain.Review, error)
}

// ProfileRepository reads the externally owned user profile table. It is the
// local tier of identity resolution; absence of a profile is not an error.
type ProfileRepository interface {
	// GetByUserID returns the profile for the user, or nil when none exists.
	GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
}
