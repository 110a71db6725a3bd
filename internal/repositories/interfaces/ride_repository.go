package interfaces

import (
	"context"

	"tripsalama/internal/models"
	"tripsalama/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Lifecycle operations. AssignDriver and UpdateStatus are conditional
	// single-document updates: they match the expected source status in the
	// filter, so two concurrent writers cannot both succeed. A zero match
	// count surfaces as ErrConflict from the implementation.
	AssignDriver(ctx context.Context, id, driverID, vehicleID primitive.ObjectID) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus) error
	Cancel(ctx context.Context, id primitive.ObjectID, from models.RideStatus, reason, cancelledBy string) error

	// Query surface. GetPending excludes scheduled rides whose time has not
	// arrived yet; GetScheduledByPassenger lists exactly those.
	GetActiveByPassenger(ctx context.Context, passengerID primitive.ObjectID) (*models.Ride, error)
	GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error)
	GetPending(ctx context.Context, limit int) ([]*models.Ride, error)
	GetScheduledByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.Ride, error)
	GetByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)

	// Position log
	SavePosition(ctx context.Context, position *models.RidePosition) error
	GetLastPosition(ctx context.Context, rideID primitive.ObjectID) (*models.RidePosition, error)

	// Rollups over completed rides, computed live per call
	GetEarningsByDriver(ctx context.Context, driverID primitive.ObjectID) (float64, error)
	GetTotalDistanceByDriver(ctx context.Context, driverID primitive.ObjectID) (float64, error)
	GetDriverStats(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStats, error)
}
