package middleware

import (
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/labstack/echo/v4"
)

// TraceID copies the request id assigned by echo's RequestID middleware into
// the request context, so service logs carry it as trace_id. It must be
// registered after RequestID.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logger.ContextWithTraceID(req.Context(), id)))
			}
			return next(c)
		}
	}
}
