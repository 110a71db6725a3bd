package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes mounts registration, login and profile management.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	profile := r.Group("/profile")
	profile.Use(middleware.AuthRequired(jwtSecret))
	{
		profile.GET("", authHandler.GetProfile)
		profile.PUT("", authHandler.UpdateProfile)
		profile.PUT("/password", authHandler.ChangePassword)
	}
}
