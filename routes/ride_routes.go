package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes mounts the ride lifecycle, the position log and the
// per-ride chat. Chat shares the /rides/:id prefix so the param name stays
// consistent across the group.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, chatHandler *handlers.ChatHandler, jwtSecret string) {
	r.GET("/eta", rideHandler.EstimateETA)

	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret))
	{
		rides.POST("", middleware.PassengerRequired(), rideHandler.RequestRide)
		rides.GET("/active", rideHandler.GetActive)
		rides.GET("/history", rideHandler.GetHistory)
		rides.GET("/pending", middleware.DriverRequired(), rideHandler.GetPending)
		rides.GET("/scheduled", middleware.PassengerRequired(), rideHandler.GetScheduled)
		rides.GET("/:id", rideHandler.Get)

		// Driver-side lifecycle
		rides.PUT("/:id/accept", middleware.DriverRequired(), rideHandler.Accept)
		rides.PUT("/:id/arriving", middleware.DriverRequired(), rideHandler.MarkArriving)
		rides.PUT("/:id/start", middleware.DriverRequired(), rideHandler.Start)
		rides.PUT("/:id/complete", middleware.DriverRequired(), rideHandler.Complete)
		rides.PUT("/:id/cancel", rideHandler.Cancel)

		// Position log
		rides.POST("/:id/position", middleware.DriverRequired(), rideHandler.SavePosition)
		rides.GET("/:id/position", rideHandler.GetLastPosition)

		// Per-ride chat
		rides.POST("/:id/messages", chatHandler.Send)
		rides.GET("/:id/messages", chatHandler.List)
		rides.GET("/:id/messages/unread", chatHandler.UnreadCount)
		rides.PUT("/:id/messages/read", chatHandler.MarkRead)
	}
}
