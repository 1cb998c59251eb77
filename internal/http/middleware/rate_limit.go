package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techfest-sliet/festd/internal/http/response"
	"github.com/techfest-sliet/festd/pkg/logger"
)

// RateLimitConfig defines rate limiting parameters.
type RateLimitConfig struct {
	Requests int           // max requests per window
	Window   time.Duration // window duration
	KeyFunc  func(r *http.Request) []string
}

// RateLimiter is a fixed-window limiter on redis. It fails open:
// when redis is unreachable requests pass, they are never dropped on
// an infrastructure fault.
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(client *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(r *http.Request) []string {
			return []string{"ip:" + ClientIP(r)}
		}
	}
	return &RateLimiter{client: client, config: config}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, key := range rl.config.KeyFunc(r) {
				if !rl.allow(r.Context(), r.URL.Path, key) {
					response.RateLimit(w, "too many requests, try again later")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, path, key string) bool {
	if rl.client == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the key so addresses and emails never land in redis verbatim.
	sum := sha256.Sum256([]byte(key))
	redisKey := fmt.Sprintf("ratelimit:%s:%x", path, sum[:8])

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.Warn("rate limit check failed", "error", err)
		return true
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.config.Window).Err(); err != nil {
			logger.Warn("rate limit expire failed", "error", err)
		}
	}
	return count <= int64(rl.config.Requests)
}
