package domain

import (
	"strings"
	"time"
)

const (
	// RatingMin and RatingMax bound the accepted rating values.
	RatingMin = 1
	RatingMax = 5

	// MaxPhotos is the maximum number of photo URLs per review.
	MaxPhotos = 6

	// MaxCommentLength bounds the free-text comment.
	MaxCommentLength = 2000

	// ReviewWindowDays is the rolling window within which a user may leave at
	// most one review per provider, and within which a contact intent must
	// exist for the submission to qualify.
	ReviewWindowDays = 30

	// SummaryWindowDays is the trailing window over which aggregate statistics
	// are computed.
	SummaryWindowDays = 90

	// MaxRecentReviews caps the cross-provider recent listing.
	MaxRecentReviews = 10

	// PlaceholderDisplayName is stored when no real identity can be resolved.
	PlaceholderDisplayName = "Usuario"

	// RoleAdmin marks callers allowed to mutate any review's photos.
	RoleAdmin = "admin"
)

// Review is a rating left by a user for a provider they contacted. The display
// identity is denormalized onto the row at write time so later profile edits do
// not retroactively change historical reviews.
type Review struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	ProviderID    int64     `json:"providerId"`
	Rating        int       `json:"rating"`
	Comment       *string   `json:"comment,omitempty"`
	Photos        []string  `json:"photos"`
	DisplayName   string    `json:"userName"`
	DisplayAvatar *string   `json:"userAvatar,omitempty"`
	Verified      bool      `json:"verified"`
	Flagged       bool      `json:"flagged"`
	IP            *string   `json:"-"`
	UserAgent     *string   `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ValidRating reports whether r is an accepted rating value.
func ValidRating(r int) bool {
	return r >= RatingMin && r <= RatingMax
}

// Normalize brings a review into its canonical shape. It is the single
// normalization point shared by the write path and every read path: photos are
// always a concrete list, timestamps are UTC, and the display name falls back
// to the placeholder rather than being empty.
func (r *Review) Normalize() {
	if r.Photos == nil {
		r.Photos = []string{}
	}
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if r.DisplayName == "" {
		r.DisplayName = PlaceholderDisplayName
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
}

// HasPlaceholderIdentity reports whether the stored display identity is still
// the fallback, making the row a candidate for read-time backfill.
func (r *Review) HasPlaceholderIdentity() bool {
	name := strings.TrimSpace(r.DisplayName)
	return name == "" || name == PlaceholderDisplayName
}

// ReviewSummary contains aggregate reputation signals for a provider (or the
// whole marketplace) over a trailing window.
type ReviewSummary struct {
	Count      int     `json:"count"`
	AvgRating  float64 `json:"avgRating"`
	PhotosRate int     `json:"photosRate"`
}

// Profile is the read model of the externally owned user profile table,
// consulted as the local tier of identity resolution.
type Profile struct {
	UserID    int64
	FirstName string
	LastName  string
	AvatarURL *string
}

// DisplayName returns the trimmed concatenation of first and last name, or ""
// when the profile carries no usable name.
func (p *Profile) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}
