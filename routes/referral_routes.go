package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReferralRoutes(r *gin.RouterGroup, referralHandler *handlers.ReferralHandler, jwtSecret string) {
	referral := r.Group("/referral")
	referral.Use(middleware.AuthRequired(jwtSecret))
	{
		referral.GET("/code", referralHandler.GetMyCode)
		referral.POST("/redeem", referralHandler.Redeem)
		referral.GET("", referralHandler.ListMine)
	}
}
