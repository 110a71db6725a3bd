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

type driverStatusRepository struct {
	collection *mongo.Collection
}

func NewDriverStatusRepository(db *mongo.Database) interfaces.DriverStatusRepository {
	return &driverStatusRepository{
		collection: db.Collection("driver_status"),
	}
}

// GetOrCreate upserts the default row and reads back whatever is stored. A
// concurrent insert wins quietly: both callers end up with the persisted
// document, not a synthesized default.
func (r *driverStatusRepository) GetOrCreate(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var status models.DriverStatus
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"driver_id": driverID},
		bson.M{
			"$setOnInsert": bson.M{
				"driver_id":    driverID,
				"is_available": false,
				"last_update":  now,
				"created_at":   now,
			},
		},
		opts,
	).Decode(&status)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create driver status: %w", err)
	}

	return &status, nil
}

func (r *driverStatusRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStatus, error) {
	var status models.DriverStatus
	err := r.collection.FindOne(ctx, bson.M{"driver_id": driverID}).Decode(&status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("driver status for %s: %w", driverID.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get driver status: %w", err)
	}

	return &status, nil
}

func (r *driverStatusRepository) UpdateAvailability(ctx context.Context, driverID primitive.ObjectID, available bool) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"driver_id": driverID},
		bson.M{"$set": bson.M{
			"is_available": available,
			"last_update":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("driver status for %s: %w", driverID.Hex(), services.ErrNotFound)
	}

	return nil
}

func (r *driverStatusRepository) UpdatePosition(ctx context.Context, driverID primitive.ObjectID, lat, lng, heading, speed float64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"driver_id": driverID},
		bson.M{"$set": bson.M{
			"latitude":    lat,
			"longitude":   lng,
			"heading":     heading,
			"speed":       speed,
			"last_update": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver position: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("driver status for %s: %w", driverID.Hex(), services.ErrNotFound)
	}

	return nil
}

func (r *driverStatusRepository) GetAvailableSince(ctx context.Context, cutoff time.Time) ([]*models.DriverStatus, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"is_available": true,
		"last_update":  bson.M{"$gte": cutoff},
		"latitude":     bson.M{"$ne": nil},
		"longitude":    bson.M{"$ne": nil},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find available drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var statuses []*models.DriverStatus
	for cursor.Next(ctx) {
		var status models.DriverStatus
		if err := cursor.Decode(&status); err != nil {
			return nil, fmt.Errorf("failed to decode driver status: %w", err)
		}
		statuses = append(statuses, &status)
	}

	return statuses, nil
}

func (r *driverStatusRepository) DeactivateInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"is_available": true,
			"last_update":  bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"is_available": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate inactive drivers: %w", err)
	}

	return result.ModifiedCount, nil
}
