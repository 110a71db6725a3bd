package services

import (
	"context"
	"errors"
	"fmt"

	"tripsalama/internal/config"
	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralService hands out single-use referral codes and pays both sides of
// a redemption from the wallet. Each open code belongs to one referrer and is
// claimed by at most one referee; a user can redeem at most one code ever.
type ReferralService struct {
	referralRepo interfaces.ReferralRepository
	wallet       *WalletService
	payment      *config.PaymentConfig
	logger       *logger.Logger
}

func NewReferralService(referralRepo interfaces.ReferralRepository, wallet *WalletService, payment *config.PaymentConfig, log *logger.Logger) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		wallet:       wallet,
		payment:      payment,
		logger:       log,
	}
}

// GetOrCreateCode returns the user's open invitation code, minting a fresh one
// when the previous code has been claimed or none exists yet.
func (s *ReferralService) GetOrCreateCode(ctx context.Context, referrerID primitive.ObjectID) (*models.Referral, error) {
	open, err := s.referralRepo.GetOpenByReferrer(ctx, referrerID)
	if err == nil {
		return open, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	referral := &models.Referral{
		ReferrerID:     referrerID,
		ReferralCode:   utils.GenerateRandomString(models.ReferralCodeLength),
		ReferrerReward: s.payment.ReferrerBonus,
		RefereeReward:  s.payment.RefereeBonus,
	}
	if err := s.referralRepo.Create(ctx, referral); err != nil {
		return nil, err
	}

	return referral, nil
}

// Redeem claims the code for the referee and credits the referral bonus to
// both sides. The claim is the commit point; a bonus that fails to land after
// it is logged for manual follow-up rather than rolled back.
func (s *ReferralService) Redeem(ctx context.Context, refereeID primitive.ObjectID, code string) (*models.Referral, error) {
	referral, err := s.referralRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if referral.ReferrerID == refereeID {
		return nil, fmt.Errorf("cannot redeem your own referral code: %w", ErrValidation)
	}

	if _, err := s.referralRepo.GetByReferee(ctx, refereeID); err == nil {
		return nil, fmt.Errorf("user %s already redeemed a referral code: %w", refereeID.Hex(), ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.referralRepo.Complete(ctx, referral.ID, refereeID); err != nil {
		return nil, err
	}

	referral, err = s.referralRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if _, err := s.wallet.GrantReferralBonus(ctx, referral.ReferrerID, refereeID, referral.ReferrerReward); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"referral_id": referral.ID.Hex(),
			"referrer_id": referral.ReferrerID.Hex(),
		}).Error("referrer bonus credit failed, manual reconciliation required")
	}
	if _, err := s.wallet.GrantReferralBonus(ctx, refereeID, referral.ReferrerID, referral.RefereeReward); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"referral_id": referral.ID.Hex(),
			"referee_id":  refereeID.Hex(),
		}).Error("referee bonus credit failed, manual reconciliation required")
	}

	s.logger.WithUserID(refereeID).WithField("referral_code", code).Info("referral code redeemed")

	return referral, nil
}

// GetMyReferrals lists the codes the user has issued, claimed or not.
func (s *ReferralService) GetMyReferrals(ctx context.Context, referrerID primitive.ObjectID) ([]*models.Referral, error) {
	return s.referralRepo.GetByReferrer(ctx, referrerID)
}
