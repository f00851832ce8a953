package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
}

// RateLimitMiddleware implements a fixed-window limit per client IP using
// Redis counters. Requests pass through when Redis is unavailable.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIP(r)
			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				if err := redisClient.Expire(ctx, key, config.Window).Err(); err != nil {
					logger.Warn("Failed to set rate limit window", zap.Error(err), zap.String("key", key))
				}
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))

			if count > int64(config.RequestsPerWindow) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))

				RespondWithError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(config.RequestsPerWindow-int(count)))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which RealIP may already have
// replaced with a bare address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
