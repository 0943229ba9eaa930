package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/pkg/database"
	apperrors "github.com/miservicio/reviews-service/pkg/errors"
)

var contactColumns = []string{
	"id", "user_id", "provider_id", "channel", "message_preview",
	"responded_at", "ip", "device", "created_at", "updated_at",
}

func newContactTestRepo(t *testing.T) (*ContactIntentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewContactIntentRepository(mock), mock
}

func sampleContactIntent() *domain.ContactIntent {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	preview := "Hola, necesito un presupuesto"
	ip := "203.0.113.9"
	device := "Mozilla/5.0"
	return &domain.ContactIntent{
		ID:             "5f1c7a7e-1111-4222-8333-944455566677",
		UserID:         42,
		ProviderID:     7,
		Channel:        domain.ChannelWhatsApp,
		MessagePreview: &preview,
		IP:             &ip,
		Device:         &device,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestContactIntentRepository_Create_Success(t *testing.T) {
	repo, mock := newContactTestRepo(t)

	ci := sampleContactIntent()

	mock.ExpectExec("INSERT INTO contact_intents").
		WithArgs(
			ci.ID, ci.UserID, ci.ProviderID, ci.Channel,
			ci.MessagePreview, ci.IP, ci.Device,
			ci.CreatedAt, ci.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), ci)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactIntentRepository_Create_DBError(t *testing.T) {
	repo, mock := newContactTestRepo(t)

	ci := sampleContactIntent()

	mock.ExpectExec("INSERT INTO contact_intents").
		WithArgs(
			ci.ID, ci.UserID, ci.ProviderID, ci.Channel,
			ci.MessagePreview, ci.IP, ci.Device,
			ci.CreatedAt, ci.UpdatedAt,
		).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), ci)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert contact intent")
}

func TestContactIntentRepository_MarkResponded_Success(t *testing.T) {
	repo, mock := newContactTestRepo(t)

	ci := sampleContactIntent()
	respondedAt := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE contact_intents").
		WithArgs(respondedAt, respondedAt, ci.ID).
		WillReturnRows(pgxmock.NewRows(contactColumns).AddRow(
			ci.ID, ci.UserID, ci.ProviderID, ci.Channel, ci.MessagePreview,
			&respondedAt, ci.IP, ci.Device, ci.CreatedAt, respondedAt,
		))

	got, err := repo.MarkResponded(context.Background(), ci.ID, respondedAt)
	require.NoError(t, err)
	require.NotNil(t, got.RespondedAt)
	assert.Equal(t, respondedAt, *got.RespondedAt)
	assert.Equal(t, respondedAt, got.UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactIntentRepository_MarkResponded_NotFound(t *testing.T) {
	repo, mock := newContactTestRepo(t)

	at := time.Now().UTC()

	mock.ExpectQuery("UPDATE contact_intents").
		WithArgs(at, at, "missing-id").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.MarkResponded(context.Background(), "missing-id", at)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContactIntentRepository_HasRecentContact(t *testing.T) {
	repo, mock := newContactTestRepo(t)

	since := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42), int64(7), since).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasRecentContact(context.Background(), 42, 7, since)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactIntentRepository_HasRecentContact_None(t *testing.T) {
	repo, mock := newContactTestRepo(t)

	since := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42), int64(99), since).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasRecentContact(context.Background(), 42, 99, since)
	require.NoError(t, err)
	assert.False(t, ok)
}
