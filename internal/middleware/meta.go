package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const requestStartKey = "request_start"

// WithResponseMeta records when the request started so handlers can report
// processing time in the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// CacheMeta builds envelope metadata for a payload that may have come from
// the dashboard cache.
func CacheMeta(c *gin.Context, hit bool) map[string]interface{} {
	meta := map[string]interface{}{"cache_hit": hit}
	if value, ok := c.Get(requestStartKey); ok {
		if start, ok := value.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
	return meta
}
