package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupDriverRoutes mounts the availability registry, vehicles and driver
// rollups.
func SetupDriverRoutes(r *gin.RouterGroup, driverHandler *handlers.DriverHandler, vehicleHandler *handlers.VehicleHandler, rideHandler *handlers.RideHandler, jwtSecret string) {
	// Passengers query nearby availability.
	nearby := r.Group("/drivers")
	nearby.Use(middleware.AuthRequired(jwtSecret))
	{
		nearby.GET("/nearby", driverHandler.GetNearby)
	}

	driver := r.Group("/driver")
	driver.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		driver.GET("/status", driverHandler.GetStatus)
		driver.PUT("/availability", driverHandler.SetAvailability)
		driver.PUT("/position", driverHandler.UpdatePosition)

		driver.GET("/earnings", rideHandler.GetDriverEarnings)
		driver.GET("/stats", rideHandler.GetDriverStats)

		driver.POST("/vehicles", vehicleHandler.Register)
		driver.GET("/vehicles", vehicleHandler.List)
		driver.PUT("/vehicles/:id/activate", vehicleHandler.Activate)
	}
}
