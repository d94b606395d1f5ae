package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/deepgram/minichat/internal/config"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/deepgram/minichat/pkg/ratelimit"
)

const RateLimitRemainingHeader = "X-RateLimit-Remaining"

// RateLimit caps requests per client IP using the limits configured for
// limitKey.
func RateLimit(limitKey string) func(http.Handler) http.Handler {
	cfg := config.GetRateLimitConfig(limitKey)
	limiter := ratelimit.NewLimiter(cfg.Window, cfg.MaxHits)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r, cfg.TrustProxy)
			allowed := limiter.Allow(ip)
			w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(limiter.Remaining(ip)))
			if !allowed {
				logger.Warn(logger.MIDDLEWARE, "Rate limit exceeded for %s on %s", ip, limitKey)
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the remote host without its port. The first X-Forwarded-For
// hop is used only when the proxy in front of the server is trusted, since
// clients can set the header themselves.
func clientIP(r *http.Request, trustProxy bool) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); trustProxy && forwarded != "" {
		if hop := strings.TrimSpace(strings.Split(forwarded, ",")[0]); hop != "" {
			return hop
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
