package services

import (
	"context"
	"errors"
	"fmt"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RaiseSOSRequest struct {
	RideID    string  `json:"ride_id"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Message   string  `json:"message"`
}

// SOSService records emergency alerts. Raising always succeeds fast; the
// ride link is best effort and an unknown ride id does not block the alert.
type SOSService struct {
	sosRepo  interfaces.SOSRepository
	rideRepo interfaces.RideRepository
	logger   *logger.Logger
}

func NewSOSService(sosRepo interfaces.SOSRepository, rideRepo interfaces.RideRepository, log *logger.Logger) *SOSService {
	return &SOSService{
		sosRepo:  sosRepo,
		rideRepo: rideRepo,
		logger:   log,
	}
}

func (s *SOSService) Raise(ctx context.Context, userID primitive.ObjectID, req *RaiseSOSRequest) (*models.SOS, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	sos := &models.SOS{
		UserID:   userID,
		Location: models.NewLocation(req.Latitude, req.Longitude, ""),
		Message:  req.Message,
	}

	if req.RideID != "" {
		rideID, err := primitive.ObjectIDFromHex(req.RideID)
		if err == nil {
			if _, rideErr := s.rideRepo.GetByID(ctx, rideID); rideErr == nil {
				sos.RideID = &rideID
			} else if !errors.Is(rideErr, ErrNotFound) {
				return nil, rideErr
			}
		}
	}

	if err := s.sosRepo.Create(ctx, sos); err != nil {
		return nil, err
	}

	s.logger.WithUserID(userID).WithField("sos_id", sos.ID.Hex()).Warn("sos alert raised")

	return sos, nil
}

func (s *SOSService) GetActive(ctx context.Context) ([]*models.SOS, error) {
	return s.sosRepo.GetActive(ctx)
}

// Resolve closes an active alert as resolved or false alarm.
func (s *SOSService) Resolve(ctx context.Context, sosID primitive.ObjectID, status models.SOSStatus) (*models.SOS, error) {
	if status != models.SOSStatusResolved && status != models.SOSStatusFalseAlarm {
		return nil, fmt.Errorf("resolution status must be resolved or false_alarm: %w", ErrValidation)
	}

	if err := s.sosRepo.Resolve(ctx, sosID, status); err != nil {
		return nil, err
	}

	return s.sosRepo.GetByID(ctx, sosID)
}
