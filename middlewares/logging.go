package middlewares

import (
	"log/slog"

	"github.com/pulsefeed/relay/internal"
)

// Logging returns middleware that emits one access log entry per
// request with the pre-generated request ID, so failures later in the
// chain can be correlated.
func Logging(log *slog.Logger) internal.Middleware {
	return func(c *internal.Context) (*internal.Response, error) {
		log.Info("request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"query", c.Request().URL.RawQuery,
			"request_id", c.RequestID(),
			"remote", c.Request().RemoteAddr,
		)
		return nil, nil
	}
}
