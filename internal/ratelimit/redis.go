package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

// counter increments the hit count stored under key, refreshes its ttl and
// returns the count after the increment.
type counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// redisCounter is the go-redis backed counter.
type redisCounter struct {
	rdb redis.UniversalClient
}

func (c redisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Redis is a Quota shared across processes. Hits are counted per key in
// fixed windows aligned to UTC (for a 24h window: calendar days).
//
// Calls to Redis go through a circuit breaker. When Redis is failing or the
// breaker is open the request is allowed and the error is returned, so an
// outage of the quota store never takes the API down.
type Redis struct {
	ctr    counter
	cb     *gobreaker.CircuitBreaker[int64]
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// RedisOption configures a Redis quota.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix (default "quota").
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithBreaker replaces the default breaker settings. Name is always set.
func WithBreaker(st gobreaker.Settings) RedisOption {
	return func(r *Redis) {
		st.Name = "quota-redis"
		r.cb = gobreaker.NewCircuitBreaker[int64](st)
	}
}

// NewRedis returns a Redis quota allowing limit requests per window per key.
func NewRedis(rdb redis.UniversalClient, limit int, window time.Duration, opts ...RedisOption) *Redis {
	return newRedis(redisCounter{rdb: rdb}, limit, window, opts...)
}

func newRedis(ctr counter, limit int, window time.Duration, opts ...RedisOption) *Redis {
	limit, window = normalize(limit, window)
	r := &Redis{
		ctr:    ctr,
		prefix: "quota",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	WithBreaker(gobreaker.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Take implements Quota.
func (r *Redis) Take(ctx context.Context, key string) (Decision, error) {
	now := r.now()
	start := now.Truncate(r.window)
	end := start.Add(r.window)
	k := fmt.Sprintf("%s:%s:%d", r.prefix, key, start.Unix())

	d := Decision{Limit: r.limit}
	n, err := r.cb.Execute(func() (int64, error) {
		return r.ctr.Incr(ctx, k, r.window)
	})
	if err != nil {
		d.Allowed = true
		return d, fmt.Errorf("quota store: %w", err)
	}
	if n > int64(r.limit) {
		d.RetryAfter = end.Sub(now)
		return d, nil
	}
	d.Allowed = true
	d.Remaining = r.limit - int(n)
	return d, nil
}

// State implements StateReporter with the breaker state.
func (r *Redis) State() string {
	return r.cb.State().String()
}
