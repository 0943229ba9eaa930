package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miservicio/reviews-service/internal/domain"
	apperrors "github.com/miservicio/reviews-service/pkg/errors"
)

func newContactTestService(repo *mockContactRepo) *ContactService {
	return NewContactService(repo, newTestProducer(), newTestLogger())
}

func TestCreateContactIntent_Success(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactIntent")).Return(nil)

	ci, err := svc.CreateContactIntent(ctx, CreateContactIntentInput{
		UserID:         42,
		ProviderID:     7,
		Channel:        domain.ChannelWhatsApp,
		MessagePreview: strPtr("Hola, necesito un presupuesto"),
		IP:             strPtr("203.0.113.9"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, ci.ID)
	assert.Equal(t, int64(42), ci.UserID)
	assert.Equal(t, int64(7), ci.ProviderID)
	assert.Equal(t, domain.ChannelWhatsApp, ci.Channel)
	assert.Nil(t, ci.RespondedAt)
	assert.False(t, ci.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestCreateContactIntent_TruncatesPreview(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactIntent")).Return(nil)

	long := strings.Repeat("x", domain.MaxMessagePreviewLength+40)
	ci, err := svc.CreateContactIntent(ctx, CreateContactIntentInput{
		UserID:         42,
		ProviderID:     7,
		Channel:        domain.ChannelForm,
		MessagePreview: &long,
	})

	require.NoError(t, err)
	require.NotNil(t, ci.MessagePreview)
	assert.Len(t, *ci.MessagePreview, domain.MaxMessagePreviewLength)
}

func TestCreateContactIntent_TruncatesPreviewOnRuneBoundary(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactIntent")).Return(nil)

	// The 160-byte mark falls inside a multibyte rune; truncation must not
	// split it into invalid UTF-8.
	long := strings.Repeat("x", domain.MaxMessagePreviewLength-1) + strings.Repeat("á", 10)
	ci, err := svc.CreateContactIntent(ctx, CreateContactIntentInput{
		UserID:         42,
		ProviderID:     7,
		Channel:        domain.ChannelWhatsApp,
		MessagePreview: &long,
	})

	require.NoError(t, err)
	require.NotNil(t, ci.MessagePreview)
	assert.True(t, utf8.ValidString(*ci.MessagePreview))
	assert.Equal(t, domain.MaxMessagePreviewLength, utf8.RuneCountInString(*ci.MessagePreview))
	assert.True(t, strings.HasSuffix(*ci.MessagePreview, "á"))
}

func TestCreateContactIntent_BlankPreviewDropped(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactIntent")).Return(nil)

	ci, err := svc.CreateContactIntent(ctx, CreateContactIntentInput{
		UserID:         42,
		ProviderID:     7,
		Channel:        domain.ChannelForm,
		MessagePreview: strPtr("   "),
	})

	require.NoError(t, err)
	assert.Nil(t, ci.MessagePreview)
}

func TestCreateContactIntent_InvalidChannel(t *testing.T) {
	svc := newContactTestService(new(mockContactRepo))

	_, err := svc.CreateContactIntent(context.Background(), CreateContactIntentInput{
		UserID: 42, ProviderID: 7, Channel: "carrier-pigeon",
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONTACT_INTENT.INVALID_CHANNEL", appErr.Code)
}

func TestCreateContactIntent_MissingProvider(t *testing.T) {
	svc := newContactTestService(new(mockContactRepo))

	_, err := svc.CreateContactIntent(context.Background(), CreateContactIntentInput{
		UserID: 42, Channel: domain.ChannelForm,
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateContactIntent_RepoError(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.ContactIntent")).Return(errors.New("db down"))

	_, err := svc.CreateContactIntent(ctx, CreateContactIntentInput{
		UserID: 42, ProviderID: 7, Channel: domain.ChannelForm,
	})
	assert.Error(t, err)
}

func TestMarkResponded_Success(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	respondedAt := time.Now().UTC()
	ci := &domain.ContactIntent{
		ID:          "ci-1",
		UserID:      42,
		ProviderID:  7,
		Channel:     domain.ChannelWhatsApp,
		RespondedAt: &respondedAt,
	}
	repo.On("MarkResponded", ctx, "ci-1", mock.AnythingOfType("time.Time")).Return(ci, nil)

	got, err := svc.MarkResponded(ctx, "ci-1")

	require.NoError(t, err)
	assert.NotNil(t, got.RespondedAt)
}

func TestMarkResponded_NotFound(t *testing.T) {
	repo := new(mockContactRepo)
	svc := newContactTestService(repo)
	ctx := context.Background()

	repo.On("MarkResponded", ctx, "missing", mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound)

	_, err := svc.MarkResponded(ctx, "missing")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONTACT_INTENT.NOT_FOUND", appErr.Code)
}

func TestMarkResponded_EmptyID(t *testing.T) {
	svc := newContactTestService(new(mockContactRepo))

	_, err := svc.MarkResponded(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
