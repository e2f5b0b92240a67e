package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/observability"
)

// Metrics records request counts and latency by route pattern.
func Metrics(m *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
