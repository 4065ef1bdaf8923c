package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type limiterEntry struct {
	windowStart time.Time
	count       int
}

// submissionLimiter caps message submissions per user inside a one-minute
// window. A limit of 0 disables it.
type submissionLimiter struct {
	mu    sync.Mutex
	limit int
	seen  map[int64]*limiterEntry
}

func newSubmissionLimiter(limit int) *submissionLimiter {
	return &submissionLimiter{
		limit: limit,
		seen:  make(map[int64]*limiterEntry),
	}
}

func (l *submissionLimiter) allow(userID int64) bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.seen[userID]
	if !ok || now.Sub(e.windowStart) >= time.Minute {
		l.seen[userID] = &limiterEntry{windowStart: now, count: 1}
		return true
	}
	e.count++
	return e.count <= l.limit
}

// RateLimitMiddleware rejects submissions over the per-user limit with 429.
func RateLimitMiddleware(limiter *submissionLimiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromContext(c)
		if !ok {
			c.Next()
			return
		}
		if !limiter.allow(actor.UserID) {
			logger.Warn().Int64("user_id", actor.UserID).Msg("submission rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many submissions, slow down"})
			return
		}
		c.Next()
	}
}
