package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miservicio/reviews-service/internal/domain"
)

type fakeSource struct {
	name string
	id   *Identity
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Resolve(_ context.Context, _ int64) (*Identity, error) {
	return f.id, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_FirstSourceWins(t *testing.T) {
	avatar := "https://cdn.example.com/a.png"
	r := NewResolver([]Source{
		&fakeSource{name: "profile", id: &Identity{DisplayName: "Ana Garcia", AvatarURL: &avatar}},
		&fakeSource{name: "remote", id: &Identity{DisplayName: "Should Not Be Used"}},
	}, nil, 0, testLogger())

	id := r.Resolve(context.Background(), 42)
	assert.Equal(t, "Ana Garcia", id.DisplayName)
	assert.Equal(t, &avatar, id.AvatarURL)
}

func TestResolver_FallsThroughOnMiss(t *testing.T) {
	r := NewResolver([]Source{
		&fakeSource{name: "profile"},
		&fakeSource{name: "remote", id: &Identity{DisplayName: "Luis Perez"}},
	}, nil, 0, testLogger())

	id := r.Resolve(context.Background(), 42)
	assert.Equal(t, "Luis Perez", id.DisplayName)
}

func TestResolver_FallsThroughOnError(t *testing.T) {
	r := NewResolver([]Source{
		&fakeSource{name: "profile", err: errors.New("db down")},
		&fakeSource{name: "remote", id: &Identity{DisplayName: "Luis Perez"}},
	}, nil, 0, testLogger())

	id := r.Resolve(context.Background(), 42)
	assert.Equal(t, "Luis Perez", id.DisplayName)
}

func TestResolver_PlaceholderWhenAllFail(t *testing.T) {
	r := NewResolver([]Source{
		&fakeSource{name: "profile", err: errors.New("db down")},
		&fakeSource{name: "remote", err: errors.New("timeout")},
	}, nil, 0, testLogger())

	id := r.Resolve(context.Background(), 42)
	assert.Equal(t, domain.PlaceholderDisplayName, id.DisplayName)
	assert.Nil(t, id.AvatarURL)
}

func TestResolver_IgnoresEmptyName(t *testing.T) {
	r := NewResolver([]Source{
		&fakeSource{name: "profile", id: &Identity{DisplayName: ""}},
	}, nil, 0, testLogger())

	id := r.Resolve(context.Background(), 42)
	assert.Equal(t, domain.PlaceholderDisplayName, id.DisplayName)
}

func TestResolver_NoSources(t *testing.T) {
	r := NewResolver(nil, nil, 0, testLogger())

	id := r.Resolve(context.Background(), 42)
	assert.Equal(t, domain.PlaceholderDisplayName, id.DisplayName)
}
