package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/miservicio/reviews-service/internal/domain"
	"github.com/miservicio/reviews-service/internal/event"
	"github.com/miservicio/reviews-service/internal/identity"
	pkgkafka "github.com/miservicio/reviews-service/pkg/kafka"
)

// --- Mock Repositories ---

type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) Create(ctx context.Context, ci *domain.ContactIntent) error {
	args := m.Called(ctx, ci)
	return args.Error(0)
}

func (m *mockContactRepo) MarkResponded(ctx context.Context, id string, at time.Time) (*domain.ContactIntent, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactIntent), args.Error(1)
}

func (m *mockContactRepo) HasRecentContact(ctx context.Context, userID, providerID int64, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, providerID, since)
	return args.Bool(0), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, rv *domain.Review, windowStart time.Time) error {
	args := m.Called(ctx, rv, windowStart)
	if args.Error(0) == nil {
		rv.ID = 101
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) CountInWindow(ctx context.Context, userID, providerID int64, since time.Time) (int, error) {
	args := m.Called(ctx, userID, providerID, since)
	return args.Int(0), args.Error(1)
}

func (m *mockReviewRepo) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, int, error) {
	args := m.Called(ctx, providerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Summary(ctx context.Context, providerID *int64, since time.Time) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, providerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

func (m *mockReviewRepo) UpdatePhotos(ctx context.Context, id int64, photos []string, at time.Time) (*domain.Review, error) {
	args := m.Called(ctx, id, photos, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) Recent(ctx context.Context, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// --- Fake Resolver ---

type fakeResolver struct {
	identity identity.Identity
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context, _ int64) identity.Identity {
	f.calls++
	if f.identity.DisplayName == "" {
		return identity.Identity{DisplayName: domain.PlaceholderDisplayName}
	}
	return f.identity
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestProducer builds a producer against an unreachable broker. Publishing
// fails silently, which the services tolerate.
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	cfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(cfg, logger), logger)
}

func strPtr(s string) *string {
	return &s
}
