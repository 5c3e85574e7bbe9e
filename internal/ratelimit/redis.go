package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Simplici0/estimator/internal/redis"
)

// Counter is the slice of the Redis client the limiter needs.
type Counter interface {
	IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

var _ Counter = (*redis.Client)(nil)

// RedisLimiter shares fixed-window counters between instances through Redis.
type RedisLimiter struct {
	name    string
	limit   int
	period  time.Duration
	counter Counter
	now     func() time.Time
}

func NewRedisLimiter(counter Counter, name string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		name:    name,
		limit:   limit,
		period:  period,
		counter: counter,
		now:     time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	start := windowStart(l.now(), l.period)
	k := fmt.Sprintf("ratelimit:%s:%s:%d", l.name, key, start.Unix())

	// The window key outlives its window slightly so late hits still expire.
	n, err := l.counter.IncrExpire(ctx, k, l.period+time.Second)
	if err != nil {
		return Decision{}, eris.Wrap(err, "ratelimit: incr")
	}
	return decide(n, l.limit, start, l.period), nil
}
