package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResolver fronts another resolver with a redis cache of successful
// resolutions. Only the credential's hash is stored. Redis being down
// degrades to resolving every request, never to denying it.
type CachedResolver struct {
	next  Resolver
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedResolver(next Resolver, client *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, redis: client, ttl: ttl}
}

func (r *CachedResolver) Resolve(ctx context.Context, credential string) (string, error) {
	key := cacheKey(credential)
	if username, err := r.redis.Get(ctx, key).Result(); err == nil && username != "" {
		return username, nil
	}
	username, err := r.next.Resolve(ctx, credential)
	if err != nil {
		return "", err
	}
	_ = r.redis.Set(ctx, key, username, r.ttl).Err()
	return username, nil
}

func cacheKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return "auth:credential:" + hex.EncodeToString(sum[:])
}
