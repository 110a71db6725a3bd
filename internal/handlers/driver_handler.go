package handlers

import (
	"strconv"

	"tripsalama/internal/middleware"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	driverService *services.DriverService
}

func NewDriverHandler(driverService *services.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

func (h *DriverHandler) GetStatus(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	status, err := h.driverService.GetStatus(c.Request.Context(), driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "driver status", status)
}

// SetAvailability flips the driver on or off shift.
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	status, err := h.driverService.SetAvailability(c.Request.Context(), driverID, *req.Available)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "availability updated", status)
}

// UpdatePosition records a location ping.
func (h *DriverHandler) UpdatePosition(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req services.PositionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	status, err := h.driverService.UpdatePosition(c.Request.Context(), driverID, req.Latitude, req.Longitude, req.Heading, req.Speed)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "position updated", status)
}

// GetNearby lists fresh available drivers within a radius of the query point.
func (h *DriverHandler) GetNearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		utils.BadRequestResponse(c, "lat and lng are required")
		return
	}

	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", strconv.FormatFloat(utils.DefaultSearchRadius, 'f', -1, 64)), 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.MaxNearbyDrivers)))

	drivers, err := h.driverService.GetAvailableInRadius(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "nearby drivers", drivers, &utils.Meta{Count: len(drivers)})
}
