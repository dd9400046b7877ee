package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/laundry_service/internal/logging"
	authmw "github.com/Skotchmaster/laundry_service/pkg/middleware/auth"
)

type Config struct {
	Logger *slog.Logger
	// Skipper bypasses the middleware entirely, e.g. for health checks.
	Skipper middleware.Skipper
}

// New puts a request-scoped logger into the request context and writes one
// request_completed line per request. Authenticated requests also carry the
// caller's user_id and role.
func New(cfg Config) echo.MiddlewareFunc {
	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}
	skip := cfg.Skipper
	if skip == nil {
		skip = middleware.DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip(c) {
				return next(c)
			}

			req := c.Request()
			l := base.With("method", req.Method, "route", c.Path(), "remote_ip", c.RealIP())
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []any{
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", res.Size,
			}
			if id, ok := authmw.UserID(c); ok {
				attrs = append(attrs, "user_id", id, "role", authmw.Role(c))
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			l.Log(c.Request().Context(), levelFor(res.Status), "request_completed", attrs...)
			return nil
		}
	}
}

// SkipPrefixes skips requests whose path starts with any of the prefixes.
func SkipPrefixes(prefixes ...string) middleware.Skipper {
	return func(c echo.Context) bool {
		p := c.Request().URL.Path
		for _, pre := range prefixes {
			if strings.HasPrefix(p, pre) {
				return true
			}
		}
		return false
	}
}

// requestID prefers the caller's header and echoes it back.
func requestID(c echo.Context) string {
	rid := c.Request().Header.Get(echo.HeaderXRequestID)
	if rid == "" {
		return c.Response().Header().Get(echo.HeaderXRequestID)
	}
	c.Response().Header().Set(echo.HeaderXRequestID, rid)
	return rid
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
