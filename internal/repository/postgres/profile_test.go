package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miservicio/reviews-service/pkg/database"
)

func TestProfileRepository_GetByUserID_Found(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewProfileRepository(mock)

	avatar := "https://cdn.example.com/avatars/42.png"

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "first_name", "last_name", "avatar_url"}).
			AddRow(int64(42), "Ana", "Garcia", &avatar))

	p, err := repo.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ana Garcia", p.DisplayName())
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, avatar, *p.AvatarURL)
}

func TestProfileRepository_GetByUserID_NoProfile(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewProfileRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.GetByUserID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileRepository_GetByUserID_DBError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewProfileRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM user_profiles").
		WithArgs(int64(42)).
		WillReturnError(errors.New("connection refused"))

	p, err := repo.GetByUserID(context.Background(), 42)
	assert.Nil(t, p)
	assert.Error(t, err)
}
