package mongodb

import (
	"context"
	"fmt"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sosRepository struct {
	collection *mongo.Collection
}

func NewSOSRepository(db *mongo.Database) interfaces.SOSRepository {
	return &sosRepository{
		collection: db.Collection("sos_alerts"),
	}
}

func (r *sosRepository) Create(ctx context.Context, sos *models.SOS) error {
	sos.ID = primitive.NewObjectID()
	sos.CreatedAt = time.Now()
	sos.UpdatedAt = sos.CreatedAt
	sos.Status = models.SOSStatusActive

	_, err := r.collection.InsertOne(ctx, sos)
	if err != nil {
		return fmt.Errorf("failed to create sos alert: %w", err)
	}

	return nil
}

func (r *sosRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOS, error) {
	var sos models.SOS
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sos)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("sos alert %s: %w", id.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sos alert: %w", err)
	}

	return &sos, nil
}

func (r *sosRepository) GetActive(ctx context.Context) ([]*models.SOS, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"status": models.SOSStatusActive}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active sos alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*models.SOS
	for cursor.Next(ctx) {
		var sos models.SOS
		if err := cursor.Decode(&sos); err != nil {
			return nil, fmt.Errorf("failed to decode sos alert: %w", err)
		}
		alerts = append(alerts, &sos)
	}

	return alerts, nil
}

func (r *sosRepository) Resolve(ctx context.Context, id primitive.ObjectID, status models.SOSStatus) error {
	now := time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.SOSStatusActive},
		bson.M{"$set": bson.M{
			"status":      status,
			"resolved_at": now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to resolve sos alert: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("sos alert %s already resolved: %w", id.Hex(), services.ErrConflict)
	}

	return nil
}
