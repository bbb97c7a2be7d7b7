// Package ratelimit caps WebSocket connection attempts per client IP.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/peergrid/messenger/internal/v1/logging"
	"github.com/peergrid/messenger/internal/v1/metrics"
)

// RateLimiter enforces the per-IP WebSocket connection rate.
type RateLimiter struct {
	wsIP *limiter.Limiter
}

// NewRateLimiter builds a memory-backed limiter from a formatted rate such
// as "100-M" (100 per minute).
func NewRateLimiter(wsIPRate string) (*RateLimiter, error) {
	rate, err := limiter.NewRateFromFormatted(wsIPRate)
	if err != nil {
		return nil, fmt.Errorf("invalid WS IP rate: %w", err)
	}

	return &RateLimiter{
		wsIP: limiter.New(memory.NewStore(), rate),
	}, nil
}

// CheckWebSocket reports whether a new WebSocket connection from this IP is
// allowed. On rejection the 429 response is already written. Store errors
// fail open.
func (rl *RateLimiter) CheckWebSocket(c *gin.Context) bool {
	ctx := c.Request.Context()

	ip := c.ClientIP()
	ipContext, err := rl.wsIP.Get(ctx, ip)
	if err != nil {
		logging.Error(ctx, "Rate limiter store failed", zap.Error(err))
		return true
	}

	if ipContext.Reached {
		metrics.RateLimitExceeded.WithLabelValues("websocket_connect", "ip").Inc()
		c.Header("X-RateLimit-Retry-After", strconv.FormatInt(ipContext.Reset, 10))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many connections from this IP"})
		return false
	}

	return true
}
