package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery converts a panic into a 500. Panics are logged through the
// request logger installed by Logger, so the line carries request_id and,
// once the bearer middleware has run, the caller's user_id and user_type.
// logger is used when the panic happens before Logger ran.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				requestLogger(c, &logger).Error().
					Interface("panic", r).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}()
			return next(c)
		}
	}
}

func requestLogger(c echo.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request().Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
