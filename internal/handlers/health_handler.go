package handlers

import (
	"net/http"

	"tripsalama/internal/services"
	"tripsalama/internal/utils"
	"tripsalama/pkg/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db    *database.MongoDB
	cache services.CacheService
}

func NewHealthHandler(db *database.MongoDB, cache services.CacheService) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check pings each backing store and reports per-dependency status. Any
// failing dependency turns the whole response into a 503.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	healthy := true
	checks := gin.H{}

	if err := h.db.Ping(); err != nil {
		checks["mongodb"] = "down: " + err.Error()
		healthy = false
	} else {
		checks["mongodb"] = "up"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "down: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "disabled"
	}

	payload := gin.H{
		"app":    utils.AppName,
		"checks": checks,
	}

	if !healthy {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "UNHEALTHY", "one or more dependencies are down")
		return
	}

	utils.SuccessResponse(c, "healthy", payload)
}
