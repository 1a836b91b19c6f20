package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxelstream/internal/logging"
)

// TraceHeader - заголовок ответа с идентификатором трассировки
const TraceHeader = "X-Trace-Id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи.
type RequestLogger struct {
	log  *logging.Logger
	skip map[string]struct{}
}

// NewRequestLogger создаёт логгер запросов. Пути из skip не логируются (например, /health).
func NewRequestLogger(log *logging.Logger, skip ...string) *RequestLogger {
	rl := &RequestLogger{log: log, skip: make(map[string]struct{}, len(skip))}
	for _, p := range skip {
		rl.skip[p] = struct{}{}
	}
	return rl
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пытаемся извлечь trace-id из OpenTelemetry, если уже создан.
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header(TraceHeader, traceID)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, ok := rl.skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		rl.log.Debug("[HTTP] %s %s %d %s ip=%s trace=%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP(), traceID)
	}
}
