package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter counts inbound messages per chat in fixed one-minute windows.
type RateCounter struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRateCounter(rdb *redis.Client) *RateCounter {
	return &RateCounter{rdb: rdb, now: time.Now}
}

// Increment bumps the counter of the current window and returns its value.
func (c *RateCounter) Increment(ctx context.Context, chatID int64) (int64, error) {
	key := fmt.Sprintf("ratelimit:%d:%d", chatID, c.now().Unix()/60)

	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment rate counter: %w", err)
	}
	return incr.Val(), nil
}
