package handlers

import (
	"tripsalama/internal/middleware"
	"tripsalama/internal/models"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSHandler struct {
	sosService *services.SOSService
}

func NewSOSHandler(sosService *services.SOSService) *SOSHandler {
	return &SOSHandler{sosService: sosService}
}

func (h *SOSHandler) Raise(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req services.RaiseSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	sos, err := h.sosService.Raise(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "sos raised", sos)
}

// ListActive is admin-only.
func (h *SOSHandler) ListActive(c *gin.Context) {
	alerts, err := h.sosService.GetActive(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "active sos alerts", alerts, &utils.Meta{Count: len(alerts)})
}

func (h *SOSHandler) Resolve(c *gin.Context) {
	sosID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid sos id")
		return
	}

	var req struct {
		Status models.SOSStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	sos, err := h.sosService.Resolve(c.Request.Context(), sosID, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "sos resolved", sos)
}
