package services

import (
	"context"
	"fmt"
	"strings"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterVehicleRequest struct {
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Color        string `json:"color" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
}

type VehicleService struct {
	vehicleRepo interfaces.VehicleRepository
	logger      *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, log *logger.Logger) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, logger: log}
}

// Register creates a vehicle for the driver. The first vehicle a driver
// registers becomes active immediately; later ones start inactive.
func (s *VehicleService) Register(ctx context.Context, driverID primitive.ObjectID, req *RegisterVehicleRequest) (*models.Vehicle, error) {
	plate := strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if plate == "" {
		return nil, fmt.Errorf("license plate required: %w", ErrValidation)
	}

	existing, err := s.vehicleRepo.GetByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		DriverID:     driverID,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Color:        strings.TrimSpace(req.Color),
		LicensePlate: plate,
		IsActive:     len(existing) == 0,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.WithUserID(driverID).WithField("vehicle_id", vehicle.ID.Hex()).Info("vehicle registered")

	return vehicle, nil
}

func (s *VehicleService) ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Vehicle, error) {
	return s.vehicleRepo.GetByDriver(ctx, driverID)
}

func (s *VehicleService) GetActive(ctx context.Context, driverID primitive.ObjectID) (*models.Vehicle, error) {
	return s.vehicleRepo.GetActiveByDriver(ctx, driverID)
}

// Activate makes the chosen vehicle the driver's current one and clears the
// flag on every other vehicle they own.
func (s *VehicleService) Activate(ctx context.Context, driverID, vehicleID primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.DriverID != driverID {
		return nil, fmt.Errorf("vehicle belongs to another driver: %w", ErrForbidden)
	}

	if err := s.vehicleRepo.SetActive(ctx, driverID, vehicleID); err != nil {
		return nil, err
	}

	return s.vehicleRepo.GetByID(ctx, vehicleID)
}
