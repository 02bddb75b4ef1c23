package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// gcEvery is the number of lookups between opportunistic sweeps of idle
// buckets.
const gcEvery = 5000

// visitor holds a single bucket and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a process-local Quota built on per-key token buckets.
//
// Each bucket holds limit tokens and refills at limit/window, so a client may
// spend its whole allowance at once and then regains one request every
// window/limit. Buckets idle for a full window are evicted, which is safe
// because an idle bucket has refilled completely.
//
// Memory is safe for concurrent use.
type Memory struct {
	limit  int
	window time.Duration
	every  rate.Limit

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64

	now func() time.Time
}

// NewMemory returns a Memory allowing limit requests per window per key.
// limit <= 0 is coerced to 1 and window <= 0 to 24h.
func NewMemory(limit int, window time.Duration) *Memory {
	limit, window = normalize(limit, window)
	return &Memory{
		limit:    limit,
		window:   window,
		every:    rate.Every(window / time.Duration(limit)),
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Take implements Quota. It never returns an error.
func (m *Memory) Take(_ context.Context, key string) (Decision, error) {
	now := m.now()
	lim := m.bucket(key, now)

	d := Decision{Limit: m.limit}
	r := lim.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		d.RetryAfter = wait
		return d, nil
	}
	d.Allowed = true
	if left := int(lim.TokensAt(now)); left > 0 {
		d.Remaining = left
	}
	return d, nil
}

// Len reports the number of live buckets.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

// bucket returns the limiter for key, creating it if absent. The sweep runs
// before the lookup so a stale bucket is replaced rather than refreshed.
func (m *Memory) bucket(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups++
	if m.lookups >= gcEvery {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) >= m.window {
				delete(m.visitors, k)
			}
		}
		m.lookups = 0
	}

	if v, ok := m.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(m.every, m.limit)
	m.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}
