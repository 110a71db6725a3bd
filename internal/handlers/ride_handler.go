package handlers

import (
	"strconv"

	"tripsalama/internal/middleware"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService *services.RideService
}

func NewRideHandler(rideService *services.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

func rideIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid ride id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// RequestRide creates a pending ride for the authenticated passenger.
func (h *RideHandler) RequestRide(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req services.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "ride requested", ride)
}

// Accept assigns the authenticated driver to a pending ride.
func (h *RideHandler) Accept(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), rideID, driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "ride accepted", ride)
}

func (h *RideHandler) MarkArriving(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.MarkArriving(c.Request.Context(), rideID, driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "driver arriving", ride)
}

func (h *RideHandler) Start(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), rideID, driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "ride started", ride)
}

func (h *RideHandler) Complete(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.CompleteRide(c.Request.Context(), rideID, driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "ride completed", ride)
}

func (h *RideHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	ride, err := h.rideService.CancelRide(c.Request.Context(), rideID, userID, middleware.GetRole(c), req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "ride cancelled", ride)
}

func (h *RideHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID, userID, middleware.GetRole(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "ride", ride)
}

func (h *RideHandler) GetActive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	ride, err := h.rideService.GetActiveRide(c.Request.Context(), userID, middleware.GetRole(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "active ride", ride)
}

// GetPending lists open requests for drivers. lat/lng are accepted but do
// not change the ordering.
func (h *RideHandler) GetPending(c *gin.Context) {
	lat, _ := strconv.ParseFloat(c.Query("lat"), 64)
	lng, _ := strconv.ParseFloat(c.Query("lng"), 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.MaxPendingRides)))

	rides, err := h.rideService.GetPendingRides(c.Request.Context(), lat, lng, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "pending rides", rides)
}

// GetScheduled lists the passenger's future bookings.
func (h *RideHandler) GetScheduled(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rides, err := h.rideService.GetScheduledRides(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "scheduled rides", rides)
}

func (h *RideHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	rides, total, err := h.rideService.GetRideHistory(c.Request.Context(), userID, middleware.GetRole(c), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	meta := utils.CreatePaginationMeta(params, total)
	utils.SuccessResponseWithMeta(c, "ride history", rides, &utils.Meta{Pagination: meta})
}

// SavePosition appends to the ride's position log.
func (h *RideHandler) SavePosition(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	var update services.PositionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	if err := h.rideService.SavePosition(c.Request.Context(), rideID, driverID, &update); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "position recorded", nil)
}

func (h *RideHandler) GetLastPosition(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	position, err := h.rideService.GetLastPosition(c.Request.Context(), rideID, userID, middleware.GetRole(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "last position", position)
}

// EstimateETA returns the haversine distance and a naive drive-time estimate
// between two points.
func (h *RideHandler) EstimateETA(c *gin.Context) {
	fromLat, err1 := strconv.ParseFloat(c.Query("from_lat"), 64)
	fromLng, err2 := strconv.ParseFloat(c.Query("from_lng"), 64)
	toLat, err3 := strconv.ParseFloat(c.Query("to_lat"), 64)
	toLng, err4 := strconv.ParseFloat(c.Query("to_lng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		utils.BadRequestResponse(c, "from_lat, from_lng, to_lat and to_lng are required")
		return
	}

	distance := utils.CalculateDistance(fromLat, fromLng, toLat, toLng)
	utils.SuccessResponse(c, "eta", gin.H{
		"distance_km": distance,
		"eta_minutes": utils.EstimateETAMinutes(distance, utils.DefaultCitySpeedKMH),
	})
}

func (h *RideHandler) GetDriverEarnings(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	earnings, err := h.rideService.GetDriverEarnings(c.Request.Context(), driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "driver earnings", earnings)
}

func (h *RideHandler) GetDriverStats(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	stats, err := h.rideService.GetDriverStats(c.Request.Context(), driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "driver stats", stats)
}
