/**
 * @description
 * This file contains the HTTP middleware for the transfer-service. The service
 * sits behind an internal gateway, so authentication is a shared-secret header
 * check rather than end-user identity. Workflow action endpoints additionally
 * pass through a Redis-backed fixed-window rate limiter.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - internal/app: The Redis rate limiter.
 */

package api

import (
	"crypto/subtle"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/transfersystem/transfer-service/internal/app"
)

const internalAPIKeyHeader = "X-Internal-API-Key"

// InternalAuthMiddleware rejects requests that do not carry the configured
// internal API key. The key check is constant-time.
func InternalAuthMiddleware(apiKey string) func(http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(apiKey))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := []byte(strings.TrimSpace(r.Header.Get(internalAPIKeyHeader)))
			if len(expected) == 0 || subtle.ConstantTimeCompare(expected, provided) != 1 {
				log.Printf("level=warn component=api msg=\"internal api key rejected\" path=%s remote=%s", r.URL.Path, r.RemoteAddr)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware applies a per-caller fixed-window limit to the routes it
// wraps. A nil limiter or non-positive limit disables limiting, and a Redis
// failure lets the request through: the limiter protects against bursts, it is
// not a correctness gate.
func RateLimitMiddleware(limiter *app.RedisActionRateLimiter, scope string, limitPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limitPerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			subject := clientSubject(r)
			count, retryAfter, err := limiter.ConsumeRateLimit(r.Context(), scope, subject, limitPerMinute, time.Minute)
			if err != nil {
				log.Printf("level=warn component=api msg=\"rate limiter unavailable; allowing request\" scope=%s err=%v", scope, err)
				next.ServeHTTP(w, r)
				return
			}
			if count > limitPerMinute {
				log.Printf("level=warn component=api msg=\"rate limit exceeded\" scope=%s subject=%s count=%d limit=%d",
					scope, subject, count, limitPerMinute)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too many requests. Please slow down.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientSubject identifies the caller for rate limiting purposes. Behind the
// gateway that is the forwarded client address; otherwise the peer address.
func clientSubject(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
