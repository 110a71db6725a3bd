package database

import (
	"context"
	"fmt"
	"time"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the application depends on. The unique
// constraints on users.email, wallets.user_id and driver_status.driver_id are
// correctness requirements, not optimizations: wallet upserts and the
// driver-status get-or-create path assume at most one row per user. The
// partial unique indexes on rides back the one-active-ride rule against
// concurrent writers that the service-level check cannot catch.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"wallets": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"driver_status": {
			{
				Keys:    bson.D{{Key: "driver_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "is_available", Value: 1}, {Key: "last_update", Value: -1}},
			},
		},
		"vehicles": {
			{
				Keys:    bson.D{{Key: "license_plate", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"rides": {
			{Keys: bson.D{{Key: "passenger_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			{
				Keys: bson.D{{Key: "passenger_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": models.ActiveRideStatuses()},
				}),
			},
			{
				// Pending rides carry a nil driver_id, so the driver-side
				// guard only covers the taken states.
				Keys: bson.D{{Key: "driver_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []models.RideStatus{
						models.RideStatusAccepted,
						models.RideStatusDriverArrived,
						models.RideStatusInProgress,
					}},
				}),
			},
		},
		"ride_positions": {
			{Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "recorded_at", Value: -1}}},
		},
		"ride_messages": {
			{Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"transactions": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{
				Keys:    bson.D{{Key: "reference", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"identity_verifications": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"referrals": {
			{
				Keys:    bson.D{{Key: "referral_code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				// One redemption per referee. Open rows store a null
				// referee_id, hence the type filter.
				Keys: bson.D{{Key: "referee_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
					"referee_id": bson.M{"$type": "objectId"},
				}),
			},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
