package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/miservicio/reviews-service/internal/domain"
)

// Identity is a resolved display identity for a user.
type Identity struct {
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// Source resolves a user's display identity from one backing system. A nil
// Identity with a nil error signals a miss, letting the resolver move on to
// the next source.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Resolve looks up the identity for the user.
	Resolve(ctx context.Context, userID int64) (*Identity, error)
}

var identityResolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identity_resolutions_total",
		Help: "Identity resolutions by outcome source",
	},
	[]string{"source"},
)

func init() {
	prometheus.MustRegister(identityResolutions)
}

const cacheKeyPrefix = "identity:user:"

// Resolver resolves display identities by consulting an ordered list of
// sources, falling back to the placeholder when every source misses or fails.
// Resolution never returns an error: a review must not be rejected because an
// identity lookup is degraded.
type Resolver struct {
	sources  []Source
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewResolver creates a resolver over the given sources, consulted in order.
// cache may be nil to disable caching of resolved identities.
func NewResolver(sources []Source, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &Resolver{
		sources:  sources,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Resolve returns the best available display identity for the user. It tries
// the cache, then each source in order, and finally the placeholder. Source
// failures are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, userID int64) Identity {
	if id := r.fromCache(ctx, userID); id != nil {
		identityResolutions.WithLabelValues("cache").Inc()
		return *id
	}

	for _, src := range r.sources {
		id, err := src.Resolve(ctx, userID)
		if err != nil {
			r.logger.WarnContext(ctx, "identity source failed",
				slog.String("source", src.Name()),
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if id == nil || id.DisplayName == "" {
			continue
		}

		identityResolutions.WithLabelValues(src.Name()).Inc()
		r.toCache(ctx, userID, id)
		return *id
	}

	identityResolutions.WithLabelValues("placeholder").Inc()
	return Identity{DisplayName: domain.PlaceholderDisplayName}
}

func (r *Resolver) fromCache(ctx context.Context, userID int64) *Identity {
	if r.cache == nil {
		return nil
	}

	raw, err := r.cache.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.DisplayName == "" {
		return nil
	}

	return &id
}

func (r *Resolver) toCache(ctx context.Context, userID int64, id *Identity) {
	if r.cache == nil {
		return
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return
	}

	if err := r.cache.Set(ctx, cacheKey(userID), raw, r.cacheTTL).Err(); err != nil {
		r.logger.DebugContext(ctx, "identity cache write failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, userID)
}
