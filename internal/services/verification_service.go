package services

import (
	"context"
	"fmt"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmitVerificationRequest struct {
	AILabel      string  `json:"ai_label" binding:"required"`
	AIConfidence float64 `json:"ai_confidence" binding:"required"`
	PhotoURL     string  `json:"photo_url"`
}

// VerificationService is the identity gate for driver accounts. We consume
// the classifier's output, we never run it: a female label at or above the
// confidence bar approves the attempt on the spot, everything else queues
// for an admin. Approval flips the driver to verified and active.
type VerificationService struct {
	verificationRepo interfaces.VerificationRepository
	userRepo         interfaces.UserRepository
	logger           *logger.Logger
}

func NewVerificationService(verificationRepo interfaces.VerificationRepository, userRepo interfaces.UserRepository, log *logger.Logger) *VerificationService {
	return &VerificationService{
		verificationRepo: verificationRepo,
		userRepo:         userRepo,
		logger:           log,
	}
}

func (s *VerificationService) Submit(ctx context.Context, userID primitive.ObjectID, req *SubmitVerificationRequest) (*models.IdentityVerification, error) {
	if req.AIConfidence < 0 || req.AIConfidence > 1 {
		return nil, fmt.Errorf("confidence must be within [0,1]: %w", ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.UserRoleDriver {
		return nil, fmt.Errorf("only driver accounts are verified: %w", ErrForbidden)
	}
	if user.IsVerified {
		return nil, fmt.Errorf("account already verified: %w", ErrConflict)
	}

	verification := &models.IdentityVerification{
		UserID:       userID,
		Status:       models.VerificationStatusPending,
		AILabel:      req.AILabel,
		AIConfidence: req.AIConfidence,
		PhotoURL:     req.PhotoURL,
	}

	if verification.QualifiesForAutoApproval() {
		verification.Status = models.VerificationStatusApproved
		verification.ReviewNote = "auto-approved by classifier"
	}

	if err := s.verificationRepo.Create(ctx, verification); err != nil {
		return nil, err
	}

	if verification.Status == models.VerificationStatusApproved {
		if err := s.activateDriver(ctx, userID); err != nil {
			return nil, err
		}
		s.logger.WithUserID(userID).Info("verification auto-approved")
	} else {
		s.logger.WithUserID(userID).WithFields(map[string]interface{}{
			"ai_label":      req.AILabel,
			"ai_confidence": req.AIConfidence,
		}).Info("verification queued for manual review")
	}

	return verification, nil
}

func (s *VerificationService) GetLatest(ctx context.Context, userID primitive.ObjectID) (*models.IdentityVerification, error) {
	return s.verificationRepo.GetLatestByUser(ctx, userID)
}

// GetPendingReviews lists the manual review queue, oldest first.
func (s *VerificationService) GetPendingReviews(ctx context.Context, limit int) ([]*models.IdentityVerification, error) {
	return s.verificationRepo.GetPendingManualReviews(ctx, limit)
}

// Approve decides a pending attempt and activates the driver account.
func (s *VerificationService) Approve(ctx context.Context, verificationID, reviewerID primitive.ObjectID, note string) (*models.IdentityVerification, error) {
	verification, err := s.verificationRepo.GetByID(ctx, verificationID)
	if err != nil {
		return nil, err
	}

	if err := s.verificationRepo.UpdateStatus(ctx, verificationID, models.VerificationStatusApproved, &reviewerID, note); err != nil {
		return nil, err
	}
	if err := s.activateDriver(ctx, verification.UserID); err != nil {
		return nil, err
	}

	s.logger.WithUserID(verification.UserID).WithField("reviewer_id", reviewerID.Hex()).Info("verification approved")

	return s.verificationRepo.GetByID(ctx, verificationID)
}

// Reject decides a pending attempt without touching the account; the driver
// may submit again.
func (s *VerificationService) Reject(ctx context.Context, verificationID, reviewerID primitive.ObjectID, note string) (*models.IdentityVerification, error) {
	verification, err := s.verificationRepo.GetByID(ctx, verificationID)
	if err != nil {
		return nil, err
	}

	if err := s.verificationRepo.UpdateStatus(ctx, verificationID, models.VerificationStatusRejected, &reviewerID, note); err != nil {
		return nil, err
	}

	s.logger.WithUserID(verification.UserID).WithField("reviewer_id", reviewerID.Hex()).Info("verification rejected")

	return s.verificationRepo.GetByID(ctx, verificationID)
}

func (s *VerificationService) activateDriver(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.userRepo.SetVerified(ctx, userID, true); err != nil {
		return err
	}
	return s.userRepo.SetActive(ctx, userID, true)
}
