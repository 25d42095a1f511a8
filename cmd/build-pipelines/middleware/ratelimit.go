package middleware

import (
	"net/http"
	"strconv"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/ratelimit"
	"github.com/labstack/echo/v4"
)

// PackageRateLimit limits requests per value of the given path parameter. A
// nil limiter disables the check. Limiter failures let the request through.
func PackageRateLimit(limiter *ratelimit.Limiter, param string, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			name := c.Param(param)
			result, err := limiter.Allow(c.Request().Context(), name)
			if err != nil {
				log.WithContext(c.Request().Context()).Warn("rate limit check failed, allowing request",
					"package", name, "error", err)
				return next(c)
			}

			if !result.Allowed {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(result.RetryAfterSeconds, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "rate_limit_exceeded",
					"message":     "too many build-releases triggers for this package",
					"limit":       result.Limit,
					"retry_after": result.RetryAfterSeconds,
				})
			}

			return next(c)
		}
	}
}
