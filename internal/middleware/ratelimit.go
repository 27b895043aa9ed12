package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pkordes/trip-planner/backend/internal/logx"
)

// RateLimit describes a token bucket: Requests per Window with Burst headroom.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Profiles used by the router.
var (
	// StrictLimit guards credential endpoints against brute force.
	StrictLimit = RateLimit{Requests: 5, Window: time.Minute, Burst: 5}
	// ModerateLimit guards invite creation and acceptance.
	ModerateLimit = RateLimit{Requests: 20, Window: time.Minute, Burst: 20}
)

// KeyFunc extracts the bucket key for a request.
type KeyFunc func(*http.Request) string

// ClientIP keys requests by remote address. Wire chi's RealIP middleware in
// front so proxies are honoured.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limiterIdleTTL is how long an unused bucket is kept before cleanup.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu          sync.Mutex
	entries     map[string]*limiterEntry
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastCleanup) > limiterIdleTTL {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(s.entries, k)
			}
		}
		s.lastCleanup = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// orDefault fills non-positive fields of l from ModerateLimit. A zero Burst
// falls back to Requests.
func (l RateLimit) orDefault() RateLimit {
	if l.Requests <= 0 || l.Window <= 0 {
		l.Requests, l.Window = ModerateLimit.Requests, ModerateLimit.Window
	}
	if l.Burst <= 0 {
		l.Burst = l.Requests
	}
	return l
}

// NewRateLimiter returns a middleware enforcing cfg per key. Rejected
// requests get 429 with a Retry-After header. A cfg without a positive
// Requests and Window gets ModerateLimit's rate.
func NewRateLimiter(cfg RateLimit, key KeyFunc) func(http.Handler) http.Handler {
	cfg = cfg.orDefault()
	set := &limiterSet{
		entries:     map[string]*limiterEntry{},
		limit:       rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.Window.Seconds() / float64(cfg.Requests))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !set.get(k, time.Now()).Allow() {
				logx.FromContext(r.Context()).WarnContext(r.Context(), "rate limit exceeded", "key", k, "path", r.URL.Path)
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
