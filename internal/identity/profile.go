package identity

import (
	"context"
	"fmt"

	"github.com/miservicio/reviews-service/internal/repository"
)

// ProfileSource resolves identities from the locally replicated user profile
// table.
type ProfileSource struct {
	profiles repository.ProfileRepository
}

// NewProfileSource creates an identity source backed by the local profile table.
func NewProfileSource(profiles repository.ProfileRepository) *ProfileSource {
	return &ProfileSource{profiles: profiles}
}

func (s *ProfileSource) Name() string { return "profile" }

// Resolve looks up the user's local profile. A missing profile or a profile
// without a usable name is a miss, not an error.
func (s *ProfileSource) Resolve(ctx context.Context, userID int64) (*Identity, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, nil
	}

	name := p.DisplayName()
	if name == "" {
		return nil, nil
	}

	return &Identity{DisplayName: name, AvatarURL: p.AvatarURL}, nil
}
