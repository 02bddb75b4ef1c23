// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file adapts a ratelimit.Quota to Gin. The limiter is installed per
// route (GET /all carries the daily quota) rather than globally.
//
// Features:
//   - Pluggable identity function (client IP by default)
//   - X-RateLimit-Limit / X-RateLimit-Remaining headers on every decision
//   - 429 with Retry-After (whole seconds, at least 1) when exhausted
//   - Fails open when the quota store reports an error
package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cafe-api/internal/ratelimit"
)

// KeyFunc selects the identity used to key a quota.
type KeyFunc func(*gin.Context) string

// KeyByIP keys quotas by client IP ("ip:<addr>").
func KeyByIP() KeyFunc { return ClientKey }

// QuotaLimiter enforces a ratelimit.Quota on the routes it is attached to.
// It is safe for concurrent use when the Quota is.
type QuotaLimiter struct {
	quota ratelimit.Quota
	keyFn KeyFunc
}

// NewQuotaLimiter builds a limiter over q. A nil keyFn means KeyByIP.
func NewQuotaLimiter(q ratelimit.Quota, keyFn KeyFunc) *QuotaLimiter {
	if keyFn == nil {
		keyFn = KeyByIP()
	}
	return &QuotaLimiter{quota: q, keyFn: keyFn}
}

// Handler returns the Gin middleware.
//
// When the quota is exhausted it responds
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: <seconds>
//	{"error": "rate limit exceeded: <limit> per <window>", "request_id": "<uuid>"}
func (l *QuotaLimiter) Handler(window time.Duration) gin.HandlerFunc {
	per := describeWindow(window)
	return func(c *gin.Context) {
		d, err := l.quota.Take(c.Request.Context(), l.keyFn(c))
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("quota check failed; allowing request")
		}

		route := c.FullPath()
		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if d.Allowed {
			quotaDecisions.WithLabelValues(route, "allowed").Inc()
			c.Next()
			return
		}

		quotaDecisions.WithLabelValues(route, "rejected").Inc()
		c.Header("Retry-After", strconv.Itoa(retrySeconds(d.RetryAfter)))
		abortError(c, http.StatusTooManyRequests, fmt.Sprintf("rate limit exceeded: %d per %s", d.Limit, per))
	}
}

// retrySeconds rounds d up to whole seconds, never below 1.
func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// describeWindow renders a window the way people say it ("1 day", "6 hours").
func describeWindow(window time.Duration) string {
	switch {
	case window > 0 && window%(24*time.Hour) == 0:
		return units(int(window/(24*time.Hour)), "day")
	case window > 0 && window%time.Hour == 0:
		return units(int(window/time.Hour), "hour")
	case window > 0 && window%time.Minute == 0:
		return units(int(window/time.Minute), "minute")
	}
	return window.String()
}

func units(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
