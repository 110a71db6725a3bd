package handlers

import (
	"tripsalama/internal/middleware"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletHandler struct {
	walletService *services.WalletService
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "wallet", wallet)
}

func (h *WalletHandler) Topup(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req struct {
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Provider string  `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	tx, err := h.walletService.Topup(c.Request.Context(), userID, req.Amount, req.Provider)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "wallet credited", tx)
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req struct {
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Provider string  `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	tx, err := h.walletService.Withdraw(c.Request.Context(), userID, req.Amount, req.Provider)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "withdrawal recorded", tx)
}

// Tip sends a tip for a completed ride from the passenger to its driver. The
// driver is resolved from the ride, never taken from the request.
func (h *WalletHandler) Tip(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req struct {
		RideID string  `json:"ride_id" binding:"required"`
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	rideID, err := primitive.ObjectIDFromHex(req.RideID)
	if err != nil {
		utils.BadRequestResponse(c, "invalid ride id")
		return
	}

	if err := h.walletService.Tip(c.Request.Context(), userID, rideID, req.Amount); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "tip sent", nil)
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.walletService.GetTransactions(c.Request.Context(), userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	meta := utils.CreatePaginationMeta(params, total)
	utils.SuccessResponseWithMeta(c, "transactions", transactions, &utils.Meta{Pagination: meta})
}

func (h *WalletHandler) GetStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	stats, err := h.walletService.GetStats(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "transaction stats", stats)
}

// Reconcile compares the wallet balance with the completed-ledger sum.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	result, err := h.walletService.Reconcile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "reconciliation", result)
}
