// Package logging configures the process logger and the request logging middleware.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

const loggerContextKey = "__request_logger"

// New builds a JSON logger writing to w at the given level name.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware assigns a request id, stores a request-scoped logger on the
// context and logs one line per request.
func Middleware(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		logger := base.With(slog.String("request_id", requestID))
		c.Set(loggerContextKey, logger)

		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("host", c.Request.Host),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}

// FromContext returns the request logger installed by Middleware, or slog.Default.
func FromContext(c *gin.Context) *slog.Logger {
	if logger, ok := Lookup(c); ok {
		return logger
	}
	return slog.Default()
}

// Lookup reports the request logger installed by Middleware, if any.
func Lookup(c *gin.Context) (*slog.Logger, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.Get(loggerContextKey)
	if !ok {
		return nil, false
	}
	logger, ok := value.(*slog.Logger)
	return logger, ok && logger != nil
}
