package mongodb

import (
	"context"
	"fmt"
	"time"

	"tripsalama/internal/models"
	"tripsalama/internal/repositories/interfaces"
	"tripsalama/internal/services"
	"tripsalama/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	collection         *mongo.Collection
	positionCollection *mongo.Collection
	cache              services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection:         db.Collection("rides"),
		positionCollection: db.Collection("ride_positions"),
		cache:              cache,
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.Status = models.RideStatusPending
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	r.cacheRide(ctx, ride)

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	// Try cache first for active rides
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("ride %s: %w", id.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if !ride.Status.IsTerminal() {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

func (r *rideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// Lifecycle operations

// AssignDriver sets driver, vehicle, status and accepted_at in one update.
// The filter matches only a pending ride, so of two concurrent assignment
// attempts exactly one observes MatchedCount == 1.
func (r *rideRepository) AssignDriver(ctx context.Context, id, driverID, vehicleID primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.RideStatusPending},
		bson.M{"$set": bson.M{
			"driver_id":   driverID,
			"vehicle_id":  vehicleID,
			"status":      models.RideStatusAccepted,
			"accepted_at": now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to assign driver: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride %s is not pending: %w", id.Hex(), services.ErrConflict)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// timestampField maps a target status to the column stamped on entry. Only
// the target state's column is touched; earlier stamps are preserved.
func timestampField(status models.RideStatus) string {
	switch status {
	case models.RideStatusAccepted:
		return "accepted_at"
	case models.RideStatusDriverArrived:
		return "arriving_at"
	case models.RideStatusInProgress:
		return "started_at"
	case models.RideStatusCompleted:
		return "completed_at"
	case models.RideStatusCancelled:
		return "cancelled_at"
	}
	return ""
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus) error {
	now := time.Now()
	updates := bson.M{
		"status":     to,
		"updated_at": now,
	}
	if field := timestampField(to); field != "" {
		updates[field] = now
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride %s is no longer %s: %w", id.Hex(), from, services.ErrConflict)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) Cancel(ctx context.Context, id primitive.ObjectID, from models.RideStatus, reason, cancelledBy string) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":              models.RideStatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
			"cancelled_by":        cancelledBy,
			"updated_at":          now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride %s is no longer %s: %w", id.Hex(), from, services.ErrConflict)
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

// Query surface

func (r *rideRepository) GetActiveByPassenger(ctx context.Context, passengerID primitive.ObjectID) (*models.Ride, error) {
	return r.getActive(ctx, bson.M{"passenger_id": passengerID})
}

func (r *rideRepository) GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error) {
	return r.getActive(ctx, bson.M{"driver_id": driverID})
}

func (r *rideRepository) getActive(ctx context.Context, filter bson.M) (*models.Ride, error) {
	filter["status"] = bson.M{"$in": models.ActiveRideStatuses()}

	var ride models.Ride
	err := r.collection.FindOne(
		ctx,
		filter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("no active ride: %w", services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) GetPending(ctx context.Context, limit int) ([]*models.Ride, error) {
	if limit <= 0 || limit > utils.MaxPendingRides {
		limit = utils.MaxPendingRides
	}

	// Scheduled rides stay invisible to drivers until their time arrives.
	filter := bson.M{
		"status": models.RideStatusPending,
		"$or": []bson.M{
			{"scheduled_at": nil},
			{"scheduled_at": bson.M{"$lte": time.Now()}},
		},
	}

	cursor, err := r.collection.Find(
		ctx,
		filter,
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, nil
}

func (r *rideRepository) GetScheduledByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.Ride, error) {
	filter := bson.M{
		"passenger_id": passengerID,
		"status":       models.RideStatusPending,
		"scheduled_at": bson.M{"$gt": time.Now()},
	}

	cursor, err := r.collection.Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find scheduled rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, nil
}

func (r *rideRepository) GetByPassenger(ctx context.Context, passengerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.findRidesWithFilter(ctx, bson.M{"passenger_id": passengerID}, params)
}

func (r *rideRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.findRidesWithFilter(ctx, bson.M{"driver_id": driverID}, params)
}

// Position log

func (r *rideRepository) SavePosition(ctx context.Context, position *models.RidePosition) error {
	position.ID = primitive.NewObjectID()
	if position.RecordedAt.IsZero() {
		position.RecordedAt = time.Now()
	}

	_, err := r.positionCollection.InsertOne(ctx, position)
	if err != nil {
		return fmt.Errorf("failed to save ride position: %w", err)
	}

	return nil
}

func (r *rideRepository) GetLastPosition(ctx context.Context, rideID primitive.ObjectID) (*models.RidePosition, error) {
	var position models.RidePosition
	err := r.positionCollection.FindOne(
		ctx,
		bson.M{"ride_id": rideID},
		options.FindOne().SetSort(bson.D{{Key: "recorded_at", Value: -1}}),
	).Decode(&position)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("no position recorded for ride %s: %w", rideID.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get last ride position: %w", err)
	}

	return &position, nil
}

// Rollups

// GetEarningsByDriver sums the driver's take over completed rides. The
// platform keeps 12%, so the driver receives estimated_price * 0.88.
func (r *rideRepository) GetEarningsByDriver(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"driver_id": driverID,
			"status":    models.RideStatusCompleted,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{
				"$multiply": []interface{}{"$estimated_price", 1 - utils.PlatformCommissionRate},
			}},
		}}},
	}

	return r.aggregateFloat(ctx, pipeline, "total")
}

func (r *rideRepository) GetTotalDistanceByDriver(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"driver_id": driverID,
			"status":    models.RideStatusCompleted,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$estimated_distance"},
		}}},
	}

	return r.aggregateFloat(ctx, pipeline, "total")
}

func (r *rideRepository) GetDriverStats(ctx context.Context, driverID primitive.ObjectID) (*models.DriverStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"driver_id": driverID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"earnings": bson.M{"$sum": bson.M{
				"$multiply": []interface{}{"$estimated_price", 1 - utils.PlatformCommissionRate},
			}},
			"distance": bson.M{"$sum": "$estimated_distance"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get driver stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &models.DriverStats{}
	for cursor.Next(ctx) {
		var result struct {
			ID       models.RideStatus `bson:"_id"`
			Count    int64             `bson:"count"`
			Earnings float64           `bson:"earnings"`
			Distance float64           `bson:"distance"`
		}

		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode driver stats: %w", err)
		}

		stats.TotalRides += result.Count
		switch result.ID {
		case models.RideStatusCompleted:
			stats.CompletedRides = result.Count
			stats.TotalEarnings = result.Earnings
			stats.TotalDistanceKM = result.Distance
		case models.RideStatusCancelled:
			stats.CancelledRides = result.Count
		}
	}

	return stats, nil
}

// Helper methods
func (r *rideRepository) aggregateFloat(ctx context.Context, pipeline mongo.Pipeline, field string) (float64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate rides: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		var result bson.M
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode ride aggregate: %w", err)
		}
		if value, ok := result[field].(float64); ok {
			return value, nil
		}
	}

	return 0, nil
}

func (r *rideRepository) findRidesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, 0, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, total, nil
}

// Cache operations
func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("ride:%s", ride.ID.Hex())
		r.cache.Set(ctx, cacheKey, ride, 15*time.Minute)
	}
}

func (r *rideRepository) getRideFromCache(ctx context.Context, rideID string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("ride:%s", rideID)
	var ride models.Ride
	err := r.cache.Get(ctx, cacheKey, &ride)
	if err != nil {
		return nil
	}

	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, rideID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("ride:%s", rideID)
		r.cache.Delete(ctx, cacheKey)
	}
}
