package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/dto"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

const (
	// visitorTTL is how long an idle account keeps its limiter.
	visitorTTL = 3 * time.Minute

	// cleanupInterval is how often idle limiters are dropped.
	cleanupInterval = time.Minute
)

// visitor tracks the limiter and last request time for one account.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AccountRateLimiter keeps one token bucket per account.
type AccountRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewAccountRateLimiter creates a limiter allowing rps requests per second
// with the given burst for each account. Idle accounts are forgotten by a
// background sweep that stops when ctx is done.
func NewAccountRateLimiter(ctx context.Context, rps float64, burst int) *AccountRateLimiter {
	rl := &AccountRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}

	go rl.cleanupLoop(ctx)

	return rl
}

// Allow reports whether key may make a request now.
func (rl *AccountRateLimiter) Allow(key string) bool {
	return rl.visitor(key).Allow()
}

// visitor returns the limiter for key, creating it if needed.
func (rl *AccountRateLimiter) visitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}

	v.lastSeen = rl.now()

	return v.limiter
}

// cleanupLoop drops idle visitors until ctx is done.
func (rl *AccountRateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep removes visitors idle for longer than visitorTTL.
func (rl *AccountRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// Middleware rejects requests over the account's rate with 429 P0900.
// It must run after RequireAccount; requests without an account are keyed by client IP.
func (rl *AccountRateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "1"
	if rl.limit > 0 && rl.limit < 1 {
		retryAfter = strconv.Itoa(int(1/float64(rl.limit)) + 1)
	}

	return func(c *gin.Context) {
		key := GetAccountID(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.Allow(key) {
			logging.FromContext(c.Request.Context()).WarnContext(c.Request.Context(), "rate limit exceeded",
				slog.String("key", key),
				slog.String("path", c.Request.URL.Path))
			c.Header("Retry-After", retryAfter)
			dto.AbortWithCode(c, dto.ErrorCodeTooManyRequests, dto.MessageTooManyRequests)

			return
		}

		c.Next()
	}
}
