package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/service"
)

const userIDKey = "userID"

// AuthMiddleware verifies the bearer token and stores the user ID in the
// request context.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Failure(models.CodeUnauthorized, "未授权，请先登录"))
			return
		}

		userID, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Failure(models.CodeUnauthorized, "未授权，请先登录"))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's ID set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RateLimiter is a fixed-window counter keyed by client. Windows are kept in
// memory; stale entries are dropped on rollover.
type RateLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	started time.Time
	counts  map[string]int
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		started: time.Now(),
		counts:  make(map[string]int),
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.started) >= l.window {
		l.started = now
		l.counts = make(map[string]int)
	}

	l.counts[key]++
	return l.counts[key] <= l.max
}

// Middleware limits requests per client. Authenticated requests are keyed by
// user ID, anonymous ones by client IP.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := UserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !l.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.Failure(models.CodeRateLimited, "请求过于频繁，请稍后重试"))
			return
		}
		c.Next()
	}
}
