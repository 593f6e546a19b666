package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"
)

// RateLimitMiddleware limita requests entrantes por cliente
type RateLimitMiddleware struct {
	limiters  *ClientLimiters
	skipPaths map[string]bool
	enabled   bool
}

// NewRateLimitMiddlewareWithConfig creates a new rate limiting middleware with configuration
func NewRateLimitMiddlewareWithConfig(cfg config.RateLimitConfig) *RateLimitMiddleware {
	// Paths that should skip rate limiting
	skipPaths := map[string]bool{
		"/health":  true,
		"/ready":   true,
		"/metrics": true,
	}

	var limiters *ClientLimiters
	if cfg.Enabled {
		limiters = NewClientLimiters(cfg.RequestsPerSecond, cfg.Burst)
	}

	return &RateLimitMiddleware{
		limiters:  limiters,
		skipPaths: skipPaths,
		enabled:   cfg.Enabled,
	}
}

// Handler returns the HTTP middleware handler
func (rlm *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rlm.enabled || rlm.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := GetClientID(r)
		allowed := rlm.limiters.Allow(clientID)
		metrics.RecordRateLimitResult(allowed)

		if !allowed {
			logging.HTTP().RateLimitExceeded(r.Context(), clientID, r.URL.Path)
			rlm.writeRateLimitError(w, rlm.limiters.RetryAfter(clientID))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientID extrae el identificador del cliente (IP real detrás de proxies)
func GetClientID(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		parts := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeRateLimitError writes a rate limit exceeded error response
func (rlm *RateLimitMiddleware) writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   "RATE_LIMIT_EXCEEDED",
		"message": "Rate limit exceeded. Please slow down your requests.",
		"code":    http.StatusTooManyRequests,
		"details": map[string]interface{}{
			"retry_after_seconds": seconds,
		},
	})
}

// Stats returns rate limiting statistics
func (rlm *RateLimitMiddleware) Stats() map[string]interface{} {
	if rlm.limiters == nil {
		return map[string]interface{}{"enabled": false}
	}
	stats := rlm.limiters.Stats()
	stats["enabled"] = rlm.enabled
	return stats
}
