package pricing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"seatcore/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// VelocityCounter tracks trailing-window sale rates per pricing scope.
// Incremented by checkout on every completed sale, read by the velocity
// strategy during resolution.
type VelocityCounter interface {
	Increment(ctx context.Context, scopeKey string, at time.Time) error
	RateInWindow(ctx context.Context, scopeKey string, at time.Time, window time.Duration) (int64, error)
}

// redisVelocityCounter keeps one counter per scope per minute. Buckets
// expire shortly after they fall out of the widest useful window, so the
// key space stays bounded during a long on-sale.
type redisVelocityCounter struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisVelocityCounter(client *redis.Client, retention time.Duration) VelocityCounter {
	if retention < time.Minute {
		retention = time.Minute
	}
	return &redisVelocityCounter{client: client, retention: retention}
}

func (c *redisVelocityCounter) Increment(ctx context.Context, scopeKey string, at time.Time) error {
	key := constants.BuildVelocityBucketKey(scopeKey, at.Unix()/60)

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.retention+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment velocity bucket: %w", err)
	}
	return nil
}

func (c *redisVelocityCounter) RateInWindow(ctx context.Context, scopeKey string, at time.Time, window time.Duration) (int64, error) {
	minutes := int(window / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	current := at.Unix() / 60
	keys := make([]string, 0, minutes)
	for i := 0; i < minutes; i++ {
		keys = append(keys, constants.BuildVelocityBucketKey(scopeKey, current-int64(i)))
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read velocity buckets: %w", err)
	}

	var total int64
	for _, v := range values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		total += n
	}
	return total, nil
}
