package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
	"golang.org/x/time/rate"
)

const clientIdleTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	swept    time.Time
	now      func() time.Time
	base     *transport.BaseHandler
}

func NewIPRateLimiter(perSecond float64, burst int, logger *slog.Logger) *IPRateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
		base:     transport.NewBaseHandler(logger),
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		l.sweep(now)
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops idle visitors at most once per TTL; called with l.mu held
// when a new IP shows up.
func (l *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < clientIdleTTL {
		return
	}
	l.swept = now
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > clientIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			l.base.Logger.WarnContext(r.Context(), "rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			l.base.HandleServiceError(w, internal.NewTooManyRequestsError("Too many requests, please slow down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the socket peer. Forwarded headers are only honoured when
// TrustedRealIP rewrote RemoteAddr for a trusted proxy.
func clientIP(r *http.Request) string {
	return hostOnly(r.RemoteAddr)
}
