package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupVerificationRoutes mounts the driver identity gate and the admin
// review queue.
func SetupVerificationRoutes(r *gin.RouterGroup, verificationHandler *handlers.VerificationHandler, jwtSecret string) {
	verification := r.Group("/verification")
	verification.Use(middleware.AuthRequired(jwtSecret))
	{
		verification.POST("", middleware.DriverRequired(), verificationHandler.Submit)
		verification.GET("/me", verificationHandler.GetMine)
	}

	admin := r.Group("/admin/verifications")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/pending", verificationHandler.ListPending)
		admin.PUT("/:id/approve", verificationHandler.Approve)
		admin.PUT("/:id/reject", verificationHandler.Reject)
	}
}
