package interfaces

import (
	"context"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationRepository interface {
	Create(ctx context.Context, verification *models.IdentityVerification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.IdentityVerification, error)
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.IdentityVerification, error)

	// GetPendingManualReviews lists pending attempts oldest first.
	GetPendingManualReviews(ctx context.Context, limit int) ([]*models.IdentityVerification, error)

	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, reviewerID *primitive.ObjectID, note string) error
}
