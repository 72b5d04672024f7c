package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// statsKeyPrefix namespaces cached per-session statistics.
const statsKeyPrefix = "attendance:stats:"

// CacheStats stores a serialized stats payload for a session with a TTL.
func (r *Redis) CacheStats(ctx context.Context, sessionID string, payload []byte, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return errors.New("redis not configured")
	}
	return r.Client.Set(ctx, statsKeyPrefix+sessionID, payload, ttl).Err()
}

// CachedStats returns the cached stats payload for a session, or nil when absent.
func (r *Redis) CachedStats(ctx context.Context, sessionID string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("redis not configured")
	}
	val, err := r.Client.Get(ctx, statsKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}
