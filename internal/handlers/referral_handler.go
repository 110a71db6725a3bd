package handlers

import (
	"tripsalama/internal/middleware"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referralService *services.ReferralService
}

func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// GetMyCode returns the caller's open invitation code, minting one if needed.
func (h *ReferralHandler) GetMyCode(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	referral, err := h.referralService.GetOrCreateCode(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "referral code", referral)
}

func (h *ReferralHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	referral, err := h.referralService.Redeem(c.Request.Context(), userID, req.Code)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "referral code redeemed", referral)
}

func (h *ReferralHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	referrals, err := h.referralService.GetMyReferrals(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "referrals", referrals, &utils.Meta{Count: len(referrals)})
}
