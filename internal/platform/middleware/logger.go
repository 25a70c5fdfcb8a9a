package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// Logger writes one structured line per request. The principal fields are
// read after the handler chain so the JWT middleware has already attached
// the authenticated user.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", RequestIDFrom(c)).
				Str("method", req.Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if principal, ok := auth.PrincipalFromContext(c.Request().Context()); ok {
				evt = evt.Str("username", principal.Username).Str("role", principal.Role)
			}

			evt.Msg("request")
			return err
		}
	}
}
