package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"golang.org/x/time/rate"
)

// Window names used to pick which limits apply to a route.
const (
	windowMinute = "minute"
	windowHour   = "hour"
	windowDay    = "day"
)

// maxVisitors bounds the number of callers tracked at once.
const maxVisitors = 10000

// RateLimits configures per-caller request limits. A non-positive value
// disables that window.
type RateLimits struct {
	ChatPerMinute int
	PerHour       int
	PerDay        int
}

type window struct {
	name  string
	limit int
	per   time.Duration
}

func (w window) String() string {
	return fmt.Sprintf("%d per 1 %s", w.limit, w.name)
}

// rateLimiter enforces several token-bucket windows per caller IP.
// A request is admitted only if every window it is checked against has a
// token; otherwise no window is charged.
type rateLimiter struct {
	windows map[string]window

	mu       sync.Mutex
	visitors *expirable.LRU[string, map[string]*rate.Limiter]
}

func newRateLimiter(limits RateLimits) *rateLimiter {
	windows := make(map[string]window)
	for _, w := range []window{
		{name: windowMinute, limit: limits.ChatPerMinute, per: time.Minute},
		{name: windowHour, limit: limits.PerHour, per: time.Hour},
		{name: windowDay, limit: limits.PerDay, per: 24 * time.Hour},
	} {
		if w.limit > 0 {
			windows[w.name] = w
		}
	}
	return &rateLimiter{
		windows: windows,
		// Idle visitors are dropped after a day, when all their buckets are full again.
		visitors: expirable.NewLRU[string, map[string]*rate.Limiter](maxVisitors, nil, 24*time.Hour),
	}
}

// allow reports whether key may make a request under the named windows.
// When it may not, the exceeded window is returned.
func (l *rateLimiter) allow(key string, names ...string) (window, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiters, ok := l.visitors.Get(key)
	if !ok {
		limiters = make(map[string]*rate.Limiter, len(l.windows))
		for name, w := range l.windows {
			limiters[name] = rate.NewLimiter(rate.Every(w.per/time.Duration(w.limit)), w.limit)
		}
		l.visitors.Add(key, limiters)
	}

	now := time.Now()
	reservations := make([]*rate.Reservation, 0, len(names))
	for _, name := range names {
		lim, ok := limiters[name]
		if !ok {
			continue
		}
		res := lim.ReserveN(now, 1)
		if !res.OK() || res.DelayFrom(now) > 0 {
			res.CancelAt(now)
			for _, prev := range reservations {
				prev.CancelAt(now)
			}
			return l.windows[name], false
		}
		reservations = append(reservations, res)
	}
	return window{}, true
}

// limit wraps next so that callers exceeding any of the named windows get 429.
func (s *Server) limit(next http.HandlerFunc, names ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exceeded, ok := s.limiter.allow(clientIP(r), names...); !ok {
			s.metrics.Inc(metrics.CounterRateLimited)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(exceeded.per.Seconds())/exceeded.limit))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded: "+exceeded.String())
			return
		}
		next(w, r)
	}
}

// clientIP returns the remote address of r without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
