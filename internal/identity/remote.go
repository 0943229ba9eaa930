package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/miservicio/reviews-service/pkg/httpclient"
	"github.com/miservicio/reviews-service/pkg/middleware"
)

// RemoteSource resolves identities from the remote identity service. Calls are
// bounded by a short timeout and protected by a circuit breaker so a degraded
// identity service cannot stall review writes.
type RemoteSource struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	timeout time.Duration
}

// NewRemoteSource creates an identity source backed by the remote identity
// service at baseURL.
func NewRemoteSource(client *httpclient.CircuitBreakerClient, baseURL string, timeout time.Duration) *RemoteSource {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RemoteSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (s *RemoteSource) Name() string { return "remote" }

// remoteProfile accepts both response shapes the identity service has shipped:
// a nested profile object and flat top-level fields.
type remoteProfile struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
	Profile   *struct {
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		AvatarURL *string `json:"avatar_url"`
	} `json:"profile"`
}

// Resolve fetches the user's profile from the identity service, forwarding the
// caller's bearer token when one is present on the context.
func (s *RemoteSource) Resolve(ctx context.Context, userID int64) (*Identity, error) {
	if s.baseURL == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/users/%d", s.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create identity request: %w", err)
	}
	if token := middleware.RawTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read identity response: %w", err)
	}

	var payload remoteProfile
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}

	first, last, avatar := payload.FirstName, payload.LastName, payload.AvatarURL
	if payload.Profile != nil {
		first, last, avatar = payload.Profile.FirstName, payload.Profile.LastName, payload.Profile.AvatarURL
	}

	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return nil, nil
	}

	return &Identity{DisplayName: name, AvatarURL: avatar}, nil
}
