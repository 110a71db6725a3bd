package interfaces

import (
	"context"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSRepository interface {
	Create(ctx context.Context, sos *models.SOS) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOS, error)
	GetActive(ctx context.Context) ([]*models.SOS, error)
	Resolve(ctx context.Context, id primitive.ObjectID, status models.SOSStatus) error
}
