package middleware

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/ratelimit"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const anonymousKey = "anonymous"

// RateLimit applies limiter per client IP. A failing store lets the request
// through.
func RateLimit(limiter *ratelimit.Limiter, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if key == "" {
				key = anonymousKey
			}

			res, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", res.ResetAt.UTC().Format(time.RFC3339))

			if !res.Allowed {
				retryAfter := res.RetryAfter(time.Now())
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, dto.RateLimitResponse{
					Error:      "Too many requests",
					Message:    "You have exceeded the rate limit. Please try again later.",
					RetryAfter: retryAfter,
				})
			}
			return next(c)
		}
	}
}
