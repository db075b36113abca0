package repository

import (
	"context"
	"time"
)

// CacheRepository is a string cache with per-entry TTL. A zero TTL means the
// entry does not expire.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
