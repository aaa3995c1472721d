package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/findbi/token-service/internal/domain"
)

const redisKeyPrefix = "revoked:"

// Redis is a revocation registry backed by a shared Redis instance, for
// deployments where several verifiers must observe the same revocations.
// Key expiry is delegated to Redis TTLs, so no sweep is needed.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a registry on top of an existing client
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Record inserts the jti with a TTL matching the token's remaining lifetime.
// SETNX makes the check-and-insert atomic per jti across concurrent callers
// and across processes.
func (r *Redis) Record(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return true, nil
	}

	first, err := r.client.SetNX(ctx, redisKeyPrefix+jti, "1", ttl).Result()
	if err != nil {
		return false, domain.ErrRevocationUnavailable.WithDetails(err)
	}
	return first, nil
}

// IsRevoked checks whether the jti is currently revoked
func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, domain.ErrRevocationUnavailable.WithDetails(err)
	}
	return n == 1, nil
}
