package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// QueueCacheHeaders marks queue snapshot responses as briefly cacheable.
// Snapshots supersede each other at the feed cadence, so anything beyond
// a few seconds would serve stale occupancy.
func QueueCacheHeaders(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}
