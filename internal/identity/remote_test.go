package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miservicio/reviews-service/pkg/httpclient"
	"github.com/miservicio/reviews-service/pkg/middleware"
)

func newRemoteSource(t *testing.T, serverURL string) *RemoteSource {
	t.Helper()
	client := httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxRetries: 0})
	cb := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("identity-test-"+t.Name()), testLogger())
	return NewRemoteSource(cb, serverURL, 3*time.Second)
}

func TestRemoteSource_NestedProfileShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"profile":{"first_name":"Ana","last_name":"Garcia","avatar_url":"https://cdn.example.com/a.png"}}`))
	}))
	defer srv.Close()

	src := newRemoteSource(t, srv.URL)

	id, err := src.Resolve(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "Ana Garcia", id.DisplayName)
	require.NotNil(t, id.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *id.AvatarURL)
}

func TestRemoteSource_FlatShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"firstName":"Luis","lastName":"Perez"}`))
	}))
	defer srv.Close()

	src := newRemoteSource(t, srv.URL)

	id, err := src.Resolve(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "Luis Perez", id.DisplayName)
	assert.Nil(t, id.AvatarURL)
}

func TestRemoteSource_ForwardsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"firstName":"Ana","lastName":"Garcia"}`))
	}))
	defer srv.Close()

	src := newRemoteSource(t, srv.URL)

	ctx := middleware.ContextWithRawToken(context.Background(), "caller-jwt")
	_, err := src.Resolve(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Bearer caller-jwt", gotAuth)
}

func TestRemoteSource_NotFoundIsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := newRemoteSource(t, srv.URL)

	id, err := src.Resolve(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestRemoteSource_EmptyNameIsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"firstName":"  ","lastName":""}`))
	}))
	defer srv.Close()

	src := newRemoteSource(t, srv.URL)

	id, err := src.Resolve(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestRemoteSource_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := newRemoteSource(t, srv.URL)

	id, err := src.Resolve(context.Background(), 42)
	assert.Error(t, err)
	assert.Nil(t, id)
}

func TestRemoteSource_NoBaseURLIsMiss(t *testing.T) {
	src := newRemoteSource(t, "")

	id, err := src.Resolve(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, id)
}
