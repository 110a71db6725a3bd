package interfaces

import (
	"context"
	"time"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverStatusRepository interface {
	// GetOrCreate returns the driver's status row, inserting a default
	// (unavailable, no position) if absent. The returned row is always
	// re-read from storage, never synthesized in memory.
	GetOrCreate(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error)

	UpdateAvailability(ctx context.Context, driverID primitive.ObjectID, available bool) error
	UpdatePosition(ctx context.Context, driverID primitive.ObjectID, lat, lng, heading, speed float64) error

	// GetAvailableSince returns rows with is_available set and last_update at
	// or after cutoff. Distance filtering happens in the service layer.
	GetAvailableSince(ctx context.Context, cutoff time.Time) ([]*models.DriverStatus, error)

	// DeactivateInactive flips every driver stale beyond cutoff to
	// unavailable and reports how many rows changed. Safe to run repeatedly.
	DeactivateInactive(ctx context.Context, cutoff time.Time) (int64, error)
}
