package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/baocreds/internal/observability"
)

// Metrics records request count, latency and in-flight requests by route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.IncInFlight()
		start := time.Now()

		c.Next()

		m.DecInFlight()
		m.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
