package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerCtxKey    = "logger"
)

// requestLogging tags every request with an ID, exposes a logger carrying it
// to handlers and logs the outcome.
func requestLogging(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		l := logger.With().
			Str("request_id", id).
			Logger()
		c.Set(loggerCtxKey, l)

		c.Next()

		l.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("handled request")
	}
}

func requestLogger(c *gin.Context) *zerolog.Logger {
	if value, ok := c.Get(loggerCtxKey); ok {
		if l, ok := value.(zerolog.Logger); ok {
			return &l
		}
	}
	nop := zerolog.Nop()
	return &nop
}
