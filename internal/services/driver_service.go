package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverService maintains the availability registry. Radius search applies
// the haversine filter in memory over the repository's fresh-and-available
// rows, so the same freshness rule governs tests and production alike.
type DriverService struct {
	statusRepo interfaces.DriverStatusRepository
	userRepo   interfaces.UserRepository
	logger     *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewDriverService(statusRepo interfaces.DriverStatusRepository, userRepo interfaces.UserRepository, log *logger.Logger) *DriverService {
	return &DriverService{
		statusRepo: statusRepo,
		userRepo:   userRepo,
		logger:     log,
		now:        time.Now,
	}
}

func (s *DriverService) GetStatus(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error) {
	return s.statusRepo.GetOrCreate(ctx, driverID)
}

// SetAvailability toggles the driver on or off shift. Going available
// requires a verified, active driver account.
func (s *DriverService) SetAvailability(ctx context.Context, driverID primitive.ObjectID, available bool) (*models.DriverStatus, error) {
	if available {
		driver, err := s.userRepo.GetByID(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if driver.Role != models.UserRoleDriver {
			return nil, fmt.Errorf("only drivers can go available: %w", ErrForbidden)
		}
		if !driver.IsVerified || !driver.IsActive {
			return nil, fmt.Errorf("driver account not verified: %w", ErrForbidden)
		}
	}

	if _, err := s.statusRepo.GetOrCreate(ctx, driverID); err != nil {
		return nil, err
	}
	if err := s.statusRepo.UpdateAvailability(ctx, driverID, available); err != nil {
		return nil, err
	}

	s.logger.WithUserID(driverID).WithField("available", available).Info("driver availability changed")

	return s.statusRepo.GetByDriver(ctx, driverID)
}

// UpdatePosition records the driver's ping and refreshes last_update, which
// keeps the driver inside the freshness window.
func (s *DriverService) UpdatePosition(ctx context.Context, driverID primitive.ObjectID, lat, lng, heading, speed float64) (*models.DriverStatus, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	if _, err := s.statusRepo.GetOrCreate(ctx, driverID); err != nil {
		return nil, err
	}
	if err := s.statusRepo.UpdatePosition(ctx, driverID, lat, lng, heading, speed); err != nil {
		return nil, err
	}

	return s.statusRepo.GetByDriver(ctx, driverID)
}

// GetAvailableInRadius returns at most limit drivers that are available,
// fresh within the 5-minute window and within radiusKM of the query point,
// sorted nearest first.
func (s *DriverService) GetAvailableInRadius(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]*models.NearbyDriver, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if radiusKM <= 0 || radiusKM > utils.MaxSearchRadius {
		radiusKM = utils.DefaultSearchRadius
	}
	if limit <= 0 || limit > utils.MaxNearbyDrivers {
		limit = utils.MaxNearbyDrivers
	}

	cutoff := s.now().Add(-models.DriverFreshnessWindow)
	statuses, err := s.statusRepo.GetAvailableSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	nearby := make([]*models.NearbyDriver, 0, len(statuses))
	for _, status := range statuses {
		if !status.HasPosition() {
			continue
		}
		distance := utils.CalculateDistance(lat, lng, *status.Latitude, *status.Longitude)
		if distance > radiusKM {
			continue
		}
		nearby = append(nearby, &models.NearbyDriver{
			DriverStatus: *status,
			DistanceKM:   distance,
		})
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}

	return nearby, nil
}

// DeactivateInactive is the sweep job: drivers silent for longer than the
// inactivity cutoff are flipped to unavailable. Safe to invoke repeatedly;
// a second run over the same rows changes nothing.
func (s *DriverService) DeactivateInactive(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-models.DriverInactiveCutoff)
	count, err := s.statusRepo.DeactivateInactive(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.WithField("deactivated", count).Info("swept inactive drivers")
	}
	return count, nil
}
