package interfaces

import (
	"context"

	"tripsalama/internal/models"
	"tripsalama/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Account flags
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error

	// Listing
	GetByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error)
}
