package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidRating(t *testing.T) {
	for r := 1; r <= 5; r++ {
		assert.True(t, ValidRating(r), "rating %d should be valid", r)
	}
	for _, r := range []int{0, -1, 6, 100} {
		assert.False(t, ValidRating(r), "rating %d should be invalid", r)
	}
}

func TestNormalize_NilPhotos(t *testing.T) {
	rv := Review{DisplayName: "Ana Perez"}
	rv.Normalize()

	assert.NotNil(t, rv.Photos)
	assert.Empty(t, rv.Photos)
}

func TestNormalize_EmptyNameFallsBackToPlaceholder(t *testing.T) {
	rv := Review{DisplayName: "   "}
	rv.Normalize()

	assert.Equal(t, PlaceholderDisplayName, rv.DisplayName)
}

func TestNormalize_TimestampsUTC(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	rv := Review{
		DisplayName: "Ana",
		CreatedAt:   time.Date(2025, 8, 1, 10, 0, 0, 0, loc),
		UpdatedAt:   time.Date(2025, 8, 1, 11, 0, 0, 0, loc),
	}
	rv.Normalize()

	assert.Equal(t, time.UTC, rv.CreatedAt.Location())
	assert.Equal(t, time.UTC, rv.UpdatedAt.Location())
}

func TestHasPlaceholderIdentity(t *testing.T) {
	assert.True(t, (&Review{DisplayName: ""}).HasPlaceholderIdentity())
	assert.True(t, (&Review{DisplayName: "  "}).HasPlaceholderIdentity())
	assert.True(t, (&Review{DisplayName: PlaceholderDisplayName}).HasPlaceholderIdentity())
	assert.False(t, (&Review{DisplayName: "Ana Perez"}).HasPlaceholderIdentity())
}

func TestProfileDisplayName(t *testing.T) {
	p := Profile{FirstName: " Ana ", LastName: " Perez "}
	assert.Equal(t, "Ana Perez", p.DisplayName())

	empty := Profile{}
	assert.Equal(t, "", empty.DisplayName())

	onlyFirst := Profile{FirstName: "Ana"}
	assert.Equal(t, "Ana", onlyFirst.DisplayName())
}

func TestContactChannelValid(t *testing.T) {
	assert.True(t, ChannelWhatsApp.Valid())
	assert.True(t, ChannelForm.Valid())
	assert.False(t, ContactChannel("email").Valid())
	assert.False(t, ContactChannel("").Valid())
}
