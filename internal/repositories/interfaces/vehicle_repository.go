package interfaces

import (
	"context"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Vehicle, error)
	GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Vehicle, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// SetActive marks one vehicle current and clears the flag on every other
	// vehicle the driver owns, preserving the at-most-one-active rule.
	SetActive(ctx context.Context, driverID, vehicleID primitive.ObjectID) error
}
