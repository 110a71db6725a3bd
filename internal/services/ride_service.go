package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/utils"
	"tripsalama/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateRideRequest struct {
	PickupLatitude    float64 `json:"pickup_latitude" binding:"required"`
	PickupLongitude   float64 `json:"pickup_longitude" binding:"required"`
	PickupAddress     string  `json:"pickup_address"`
	DropoffLatitude   float64 `json:"dropoff_latitude" binding:"required"`
	DropoffLongitude  float64 `json:"dropoff_longitude" binding:"required"`
	DropoffAddress    string  `json:"dropoff_address"`
	EstimatedDistance float64 `json:"estimated_distance"`
	EstimatedDuration int     `json:"estimated_duration"`
	EstimatedPrice    float64 `json:"estimated_price"`
	RoutePolyline     string  `json:"route_polyline"`

	// ScheduledAt, when set, books the ride for a future time. The ride is
	// created pending but drivers do not see it until the time arrives.
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type PositionUpdate struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
}

// RideService drives the ride lifecycle. Every status write is validated
// against the transition table before it reaches storage, and the storage
// write itself is conditional on the expected source status, so concurrent
// writers race safely.
type RideService struct {
	rideRepo    interfaces.RideRepository
	userRepo    interfaces.UserRepository
	vehicleRepo interfaces.VehicleRepository
	statusRepo  interfaces.DriverStatusRepository
	payments    *WalletService
	logger      *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	vehicleRepo interfaces.VehicleRepository,
	statusRepo interfaces.DriverStatusRepository,
	payments *WalletService,
	log *logger.Logger,
) *RideService {
	return &RideService{
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
		statusRepo:  statusRepo,
		payments:    payments,
		logger:      log,
	}
}

func (s *RideService) CreateRide(ctx context.Context, passengerID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error) {
	if err := validateCoordinates(req.PickupLatitude, req.PickupLongitude); err != nil {
		return nil, err
	}
	if err := validateCoordinates(req.DropoffLatitude, req.DropoffLongitude); err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil {
		now := time.Now()
		if !req.ScheduledAt.After(now) {
			return nil, fmt.Errorf("scheduled time must be in the future: %w", ErrValidation)
		}
		if req.ScheduledAt.After(now.Add(utils.MaxScheduleAhead)) {
			return nil, fmt.Errorf("rides can be scheduled at most %s ahead: %w", utils.MaxScheduleAhead, ErrValidation)
		}
	}

	// One in-flight ride per passenger; a scheduled ride counts until it is
	// taken or cancelled.
	if _, err := s.rideRepo.GetActiveByPassenger(ctx, passengerID); err == nil {
		return nil, fmt.Errorf("passenger already has an active ride: %w", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	distance := req.EstimatedDistance
	if distance <= 0 {
		distance = utils.CalculateDistance(req.PickupLatitude, req.PickupLongitude, req.DropoffLatitude, req.DropoffLongitude)
	}
	duration := req.EstimatedDuration
	if duration <= 0 {
		duration = utils.EstimateETAMinutes(distance, utils.DefaultCitySpeedKMH)
	}

	ride := &models.Ride{
		RideNumber:        utils.GenerateRideNumber(),
		PassengerID:       passengerID,
		Status:            models.RideStatusPending,
		PickupLocation:    models.NewLocation(req.PickupLatitude, req.PickupLongitude, req.PickupAddress),
		DropoffLocation:   models.NewLocation(req.DropoffLatitude, req.DropoffLongitude, req.DropoffAddress),
		EstimatedDistance: distance,
		EstimatedDuration: duration,
		EstimatedPrice:    req.EstimatedPrice,
		Currency:          utils.DefaultCurrency,
		RoutePolyline:     req.RoutePolyline,
		ScheduledAt:       req.ScheduledAt,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.logger.LogRideEvent(ride.ID, "ride_requested", map[string]interface{}{
		"passenger_id": passengerID.Hex(),
		"distance_km":  distance,
	})

	return ride, nil
}

// AcceptRide assigns the driver and their active vehicle to a pending ride.
// The driver must be verified, free of other active rides and have a current
// vehicle; losing the assignment race surfaces as ErrConflict.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	driver, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Role != models.UserRoleDriver {
		return nil, fmt.Errorf("only drivers accept rides: %w", ErrForbidden)
	}
	if !driver.IsVerified || !driver.IsActive {
		return nil, fmt.Errorf("driver account not verified: %w", ErrForbidden)
	}

	if _, err := s.rideRepo.GetActiveByDriver(ctx, driverID); err == nil {
		return nil, fmt.Errorf("driver already has an active ride: %w", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetActiveByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("driver has no active vehicle: %w", ErrValidation)
		}
		return nil, err
	}

	if err := s.rideRepo.AssignDriver(ctx, rideID, driverID, vehicle.ID); err != nil {
		return nil, err
	}

	s.logger.LogRideEvent(rideID, "ride_accepted", map[string]interface{}{
		"driver_id":  driverID.Hex(),
		"vehicle_id": vehicle.ID.Hex(),
	})

	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *RideService) MarkArriving(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	return s.advance(ctx, rideID, driverID, models.RideStatusDriverArrived)
}

func (s *RideService) StartRide(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	return s.advance(ctx, rideID, driverID, models.RideStatusInProgress)
}

// CompleteRide moves the ride to completed and settles payment: the passenger
// is debited the full price, the driver is credited price minus the platform
// commission, and a negative commission audit row is written. A payment
// failure after completion is logged, not rolled back; the ledger and ride
// log disagree loudly rather than silently.
func (s *RideService) CompleteRide(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.advance(ctx, rideID, driverID, models.RideStatusCompleted)
	if err != nil {
		return nil, err
	}

	if s.payments != nil && ride.EstimatedPrice > 0 && ride.DriverID != nil {
		if err := s.payments.PayForRide(ctx, ride); err != nil {
			s.logger.WithError(err).WithRideID(rideID).Error("ride payment failed")
		}
	}

	return ride, nil
}

// advance performs one driver-side forward transition, checking ownership and
// the transition table before the conditional write.
func (s *RideService) advance(ctx context.Context, rideID, driverID primitive.ObjectID, to models.RideStatus) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == nil || *ride.DriverID != driverID {
		return nil, fmt.Errorf("ride belongs to another driver: %w", ErrForbidden)
	}
	if !ride.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("cannot move ride from %s to %s: %w", ride.Status, to, ErrInvalidTransition)
	}

	if err := s.rideRepo.UpdateStatus(ctx, rideID, ride.Status, to); err != nil {
		return nil, err
	}

	s.logger.LogRideEvent(rideID, "ride_status_changed", map[string]interface{}{
		"from": string(ride.Status),
		"to":   string(to),
	})

	return s.rideRepo.GetByID(ctx, rideID)
}

// CancelRide cancels from any non-terminal state. Passengers may cancel their
// own rides, drivers theirs, admins any.
func (s *RideService) CancelRide(ctx context.Context, rideID, userID primitive.ObjectID, role models.UserRole, reason string) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.UserRolePassenger:
		if ride.PassengerID != userID {
			return nil, fmt.Errorf("ride belongs to another passenger: %w", ErrForbidden)
		}
	case models.UserRoleDriver:
		if ride.DriverID == nil || *ride.DriverID != userID {
			return nil, fmt.Errorf("ride belongs to another driver: %w", ErrForbidden)
		}
	case models.UserRoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrForbidden)
	}

	if !ride.Status.CanTransitionTo(models.RideStatusCancelled) {
		return nil, fmt.Errorf("cannot cancel ride in state %s: %w", ride.Status, ErrInvalidTransition)
	}

	if err := s.rideRepo.Cancel(ctx, rideID, ride.Status, reason, string(role)); err != nil {
		return nil, err
	}

	s.logger.LogRideEvent(rideID, "ride_cancelled", map[string]interface{}{
		"cancelled_by": string(role),
		"reason":       reason,
	})

	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *RideService) GetRide(ctx context.Context, rideID, userID primitive.ObjectID, role models.UserRole) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !canViewRide(ride, userID, role) {
		return nil, fmt.Errorf("not a participant of this ride: %w", ErrForbidden)
	}
	return ride, nil
}

func (s *RideService) GetActiveRide(ctx context.Context, userID primitive.ObjectID, role models.UserRole) (*models.Ride, error) {
	if role == models.UserRoleDriver {
		return s.rideRepo.GetActiveByDriver(ctx, userID)
	}
	return s.rideRepo.GetActiveByPassenger(ctx, userID)
}

// GetPendingRides lists up to 20 open requests by creation time, excluding
// scheduled rides whose time has not arrived. The lat/lng parameters are
// accepted for interface stability but do not affect the result; there is no
// proximity matcher.
func (s *RideService) GetPendingRides(ctx context.Context, lat, lng float64, limit int) ([]*models.Ride, error) {
	_ = lat
	_ = lng
	return s.rideRepo.GetPending(ctx, limit)
}

// GetScheduledRides lists the passenger's future bookings, soonest first.
func (s *RideService) GetScheduledRides(ctx context.Context, passengerID primitive.ObjectID) ([]*models.Ride, error) {
	return s.rideRepo.GetScheduledByPassenger(ctx, passengerID)
}

func (s *RideService) GetRideHistory(ctx context.Context, userID primitive.ObjectID, role models.UserRole, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	if role == models.UserRoleDriver {
		return s.rideRepo.GetByDriver(ctx, userID, params)
	}
	return s.rideRepo.GetByPassenger(ctx, userID, params)
}

// SavePosition appends to the ride's position log. Only the assigned driver
// reports, and only while the ride is underway.
func (s *RideService) SavePosition(ctx context.Context, rideID, driverID primitive.ObjectID, update *PositionUpdate) error {
	if err := validateCoordinates(update.Latitude, update.Longitude); err != nil {
		return err
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID == nil || *ride.DriverID != driverID {
		return fmt.Errorf("ride belongs to another driver: %w", ErrForbidden)
	}
	if ride.Status.IsTerminal() || ride.Status == models.RideStatusPending {
		return fmt.Errorf("ride %s accepts no position updates in state %s: %w", rideID.Hex(), ride.Status, ErrConflict)
	}

	position := &models.RidePosition{
		RideID:    rideID,
		Latitude:  update.Latitude,
		Longitude: update.Longitude,
		Heading:   update.Heading,
		Speed:     update.Speed,
	}

	if err := s.rideRepo.SavePosition(ctx, position); err != nil {
		return err
	}

	// Keep the availability registry fresh as a side effect of ride tracking.
	if err := s.statusRepo.UpdatePosition(ctx, driverID, update.Latitude, update.Longitude, update.Heading, update.Speed); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.WithError(err).WithRideID(rideID).Warn("failed to refresh driver status from ride position")
	}

	return nil
}

func (s *RideService) GetLastPosition(ctx context.Context, rideID, userID primitive.ObjectID, role models.UserRole) (*models.RidePosition, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !canViewRide(ride, userID, role) {
		return nil, fmt.Errorf("not a participant of this ride: %w", ErrForbidden)
	}
	return s.rideRepo.GetLastPosition(ctx, rideID)
}

// DriverEarnings is the live earnings rollup over a driver's completed rides.
type DriverEarnings struct {
	TotalEarnings   float64 `json:"total_earnings"`
	TotalDistanceKM float64 `json:"total_distance_km"`
	Currency        string  `json:"currency"`
}

func (s *RideService) GetDriverEarnings(ctx context.Context, driverID primitive.ObjectID) (*DriverEarnings, error) {
	earnings, err := s.rideRepo.GetEarningsByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	distance, err := s.rideRepo.GetTotalDistanceByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	return &DriverEarnings{
		TotalEarnings:   earnings,
		TotalDistanceKM: distance,
		Currency:        utils.DefaultCurrency,
	}, nil
}

func (s *RideService) GetDriverStats(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStats, error) {
	return s.rideRepo.GetDriverStats(ctx, driverID)
}

func canViewRide(ride *models.Ride, userID primitive.ObjectID, role models.UserRole) bool {
	if role == models.UserRoleAdmin {
		return true
	}
	if ride.PassengerID == userID {
		return true
	}
	return ride.DriverID != nil && *ride.DriverID == userID
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("coordinates out of range: %w", ErrValidation)
	}
	return nil
}
