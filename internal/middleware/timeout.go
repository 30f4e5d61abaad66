package middleware

import (
	"context" // Deadline wrapping
	"time"    // Time durations

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequestTimeout caps every request with a deadline. Store and cache
// calls downstream inherit it through the request context, so a lock
// wait or store stall fails with context.DeadlineExceeded (mapped to
// 503) instead of hanging the request.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
