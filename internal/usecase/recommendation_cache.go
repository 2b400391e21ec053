package usecase

import (
	"context"
	"fmt"
	"time"

	"venture-match/internal/domain/profile"

	"github.com/google/uuid"
)

// RecommendationCache is satisfied by the redis wrapper. Implementations
// degrade to no-ops when the cache backend is unavailable.
type RecommendationCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

func RecommendationCacheKey(t profile.Type, profileID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("recs:%s:%s:p%d:s%d", t, profileID, page, pageSize)
}

func RecommendationCachePattern(t profile.Type, profileID uuid.UUID) string {
	return fmt.Sprintf("recs:%s:%s:*", t, profileID)
}

func RefreshLockKey(t profile.Type, profileID uuid.UUID) string {
	return fmt.Sprintf("match:refresh:lock:%s:%s", t, profileID)
}
