package interfaces

import (
	"context"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByRide(ctx context.Context, rideID primitive.ObjectID, limit int) ([]*models.Message, error)
	CountUnread(ctx context.Context, rideID, readerID primitive.ObjectID) (int64, error)

	// MarkRead flags every message in the ride not sent by reader as read.
	MarkRead(ctx context.Context, rideID, readerID primitive.ObjectID) error
}
