package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/empdir/emp-api/internal/logging"
	"github.com/empdir/emp-api/internal/middleware/authmw"
	"github.com/empdir/emp-api/internal/tokens"
)

// RequestLogger attaches a request-scoped slog.Logger to the request context
// and writes one summary line per request. Severity follows the response
// class: handler errors and 5xx log at error, 4xx at warn, everything else at
// info. When the request carried a valid token the subject claim is included.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"request_id", rid,
				"method", req.Method,
				"route", c.Path(),
				"remote_ip", c.RealIP(),
			)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				"status", c.Response().Status,
				"elapsed_ms", time.Since(start).Milliseconds(),
				"bytes_out", c.Response().Size,
			}
			if claims, ok := c.Get(authmw.ContextKey).(*tokens.Claims); ok && claims != nil {
				attrs = append(attrs, "subject", claims.Subject)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			switch status := c.Response().Status; {
			case err != nil || status >= 500:
				l.Error("http request", attrs...)
			case status >= 400:
				l.Warn("http request", attrs...)
			default:
				l.Info("http request", attrs...)
			}
			return nil
		}
	}
}
