package middleware

import (
	"fmt"
	"net/http"
	"time"

	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
)

// RateLimit counts requests per client IP in a one-minute Redis window.
// With no cache wired the limiter is a no-op; we never fail requests because
// the counter backend is down.
func RateLimit(cache services.CacheService, perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = utils.DefaultRateLimit
	}

	return func(c *gin.Context) {
		if cache == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), time.Now().UTC().Format("200601021504"))

		count, err := cache.Increment(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			_ = cache.SetExpire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(perMinute) {
			c.Header("Retry-After", "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
