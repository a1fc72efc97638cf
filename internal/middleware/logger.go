package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"canteen/internal/logger"
)

// Logger logs one line per request with the request ID set by echo's
// RequestID middleware.
func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the response so the status below is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.Int("status", res.Status),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.String("ip", c.RealIP()),
				zap.String("user-agent", req.UserAgent()),
				zap.Duration("latency", time.Since(start)),
			}

			switch {
			case res.Status >= 500:
				logger.Log.Error("Server Error", fields...)
			case res.Status >= 400:
				logger.Log.Warn("Client Error", fields...)
			default:
				logger.Log.Info("Request", fields...)
			}
			return nil
		}
	}
}
