// Package ratelimit implements the per-client quotas applied to expensive
// routes. A Quota decides, for one identity key, whether one more request is
// allowed inside the configured window.
//
// Two implementations are provided:
//   - Memory: process-local token buckets (golang.org/x/time/rate)
//   - Redis:  fixed windows shared by every instance (go-redis), guarded by a
//     circuit breaker (sony/gobreaker) that fails open
//
// Neither is an authorization mechanism.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Take.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// Limit is the configured number of requests per window.
	Limit int
	// Remaining is a best-effort count of requests left in the window.
	Remaining int
	// RetryAfter is how long the caller should wait when Allowed is false.
	// Zero means no recommendation.
	RetryAfter time.Duration
}

// Quota consumes one unit for key and reports the decision.
//
// A non-nil error means the backing store could not be consulted; the
// Decision is still meaningful and says what the caller should do.
type Quota interface {
	Take(ctx context.Context, key string) (Decision, error)
}

// StateReporter is implemented by quotas backed by an external store. State
// names the health of the path to that store ("closed", "half-open", "open").
type StateReporter interface {
	State() string
}

// normalize coerces a limit/window pair into usable values.
func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return limit, window
}
