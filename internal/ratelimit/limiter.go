// Package ratelimit throttles form submissions with fixed-window counters.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key. Implementations are safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KeyFunc derives the limiter key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by remote address. Run it behind chi's RealIP
// middleware so proxied requests resolve to the client.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// windowStart truncates now to the beginning of its fixed window.
func windowStart(now time.Time, period time.Duration) time.Time {
	return now.Truncate(period)
}

func decide(count int64, limit int, start time.Time, period time.Duration) Decision {
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
		ResetAt:   start.Add(period),
	}
}
