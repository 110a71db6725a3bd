package handlers

import (
	"strconv"

	"tripsalama/internal/middleware"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationHandler struct {
	verificationService *services.VerificationService
}

func NewVerificationHandler(verificationService *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// Submit records a verification attempt with the classifier's output.
func (h *VerificationHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req services.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	verification, err := h.verificationService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "verification submitted", verification)
}

func (h *VerificationHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	verification, err := h.verificationService.GetLatest(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "verification status", verification)
}

// ListPending is the admin review queue, oldest first.
func (h *VerificationHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	verifications, err := h.verificationService.GetPendingReviews(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "pending verifications", verifications, &utils.Meta{Count: len(verifications)})
}

func (h *VerificationHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

func (h *VerificationHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *VerificationHandler) decide(c *gin.Context, approve bool) {
	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	verificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid verification id")
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&req)

	var verification interface{}
	if approve {
		verification, err = h.verificationService.Approve(c.Request.Context(), verificationID, reviewerID, req.Note)
	} else {
		verification, err = h.verificationService.Reject(c.Request.Context(), verificationID, reviewerID, req.Note)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "verification decided", verification)
}
