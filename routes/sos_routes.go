package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSOSRoutes mounts emergency alerts; listing and resolution are
// admin-only.
func SetupSOSRoutes(r *gin.RouterGroup, sosHandler *handlers.SOSHandler, jwtSecret string) {
	sos := r.Group("/sos")
	sos.Use(middleware.AuthRequired(jwtSecret))
	{
		sos.POST("", sosHandler.Raise)
	}

	admin := r.Group("/admin/sos")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/active", sosHandler.ListActive)
		admin.PUT("/:id/resolve", sosHandler.Resolve)
	}
}
