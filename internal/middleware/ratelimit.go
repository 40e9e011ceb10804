package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	apperrors "danaku/internal/errors"
	"danaku/internal/logger"
)

var errRateLimited = &apperrors.AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later", StatusCode: http.StatusTooManyRequests}

// NewLimiter builds an in-memory limiter from a formatted rate such as "300-M".
func NewLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit limits requests per authenticated user, or per client IP when the
// request is anonymous.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	log := logger.Named("ratelimit")
	return func(c *gin.Context) {
		key := c.GetString(UserIDKey)
		if key == "" {
			key = c.ClientIP()
		}

		ctx, err := l.Get(c.Request.Context(), key)
		if err != nil {
			// Fail open.
			log.Errorw("rate limit lookup failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			log.Warnw("rate limit exceeded", "key", key, "limit", ctx.Limit)
			abortWithAppError(c, errRateLimited)
			return
		}

		c.Next()
	}
}
