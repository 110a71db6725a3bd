package interfaces

import (
	"context"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionRepository interface {
	// Create inserts an immutable audit row. After this point only status,
	// error_message and processed_at may change.
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)

	// UpdateStatus moves the row; processed_at is stamped only when the new
	// status is completed or failed.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus, errorMessage string) error

	// Listing
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Transaction, error)

	// Rollups
	GetStats(ctx context.Context, userID primitive.ObjectID) (*models.TransactionStats, error)
	GetDriverEarnings(ctx context.Context, driverID primitive.ObjectID) (float64, error)

	// SumCompletedByUser totals the signed amounts of the user's completed
	// rows; the wallet balance should reconcile against it.
	SumCompletedByUser(ctx context.Context, userID primitive.ObjectID) (float64, error)

	// SumWithdrawalsSince totals the absolute amounts of the user's completed
	// withdrawal rows created at or after since. The wallet service uses it to
	// enforce the daily withdrawal cap cumulatively.
	SumWithdrawalsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (float64, error)
}
