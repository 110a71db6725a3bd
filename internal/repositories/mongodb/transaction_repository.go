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
)

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
	}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	if transaction.Status == "" {
		transaction.Status = models.TransactionStatusPending
	}

	_, err := r.collection.InsertOne(ctx, transaction)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("transaction reference %s already recorded: %w", transaction.Reference, services.ErrConflict)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("transaction %s: %w", id.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &transaction, nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("transaction with reference %s: %w", reference, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}

	return &transaction, nil
}

// UpdateStatus is the only mutation allowed after creation. processed_at is
// stamped once the row reaches completed or failed.
func (r *transactionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus, errorMessage string) error {
	now := time.Now()
	updates := bson.M{
		"status":     status,
		"updated_at": now,
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if status == models.TransactionStatusCompleted || status == models.TransactionStatusFailed {
		updates["processed_at"] = now
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("transaction %s: %w", id.Hex(), services.ErrNotFound)
	}

	return nil
}

func (r *transactionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	for cursor.Next(ctx) {
		var transaction models.Transaction
		if err := cursor.Decode(&transaction); err != nil {
			return nil, 0, fmt.Errorf("failed to decode transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}

	return transactions, total, nil
}

func (r *transactionRepository) GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Transaction, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ride_id": rideID})
	if err != nil {
		return nil, fmt.Errorf("failed to find ride transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	for cursor.Next(ctx) {
		var transaction models.Transaction
		if err := cursor.Decode(&transaction); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}

	return transactions, nil
}

func (r *transactionRepository) GetStats(ctx context.Context, userID primitive.ObjectID) (*models.TransactionStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"credited": bson.M{"$sum": bson.M{
				"$cond": []interface{}{bson.M{"$gt": []interface{}{"$amount", 0}}, "$amount", 0},
			}},
			"debited": bson.M{"$sum": bson.M{
				"$cond": []interface{}{bson.M{"$lt": []interface{}{"$amount", 0}}, "$amount", 0},
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &models.TransactionStats{}
	for cursor.Next(ctx) {
		var result struct {
			ID       models.TransactionStatus `bson:"_id"`
			Count    int64                    `bson:"count"`
			Credited float64                  `bson:"credited"`
			Debited  float64                  `bson:"debited"`
		}

		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode transaction stats: %w", err)
		}

		stats.TotalCount += result.Count
		switch result.ID {
		case models.TransactionStatusCompleted:
			stats.CompletedCount = result.Count
			stats.TotalCredited = result.Credited
			stats.TotalDebited = -result.Debited
		case models.TransactionStatusFailed:
			stats.FailedCount = result.Count
		}
	}

	return stats, nil
}

// GetDriverEarnings totals the driver's completed payment and tip rows.
func (r *transactionRepository) GetDriverEarnings(ctx context.Context, driverID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": driverID,
			"status":  models.TransactionStatusCompleted,
			"type": bson.M{"$in": []models.TransactionType{
				models.TransactionTypePayment,
				models.TransactionTypeTip,
			}},
			"amount": bson.M{"$gt": 0},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	return r.aggregateFloat(ctx, pipeline)
}

func (r *transactionRepository) SumCompletedByUser(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": userID,
			"status":  models.TransactionStatusCompleted,
			// Commission rows are audit-only: they record the platform's cut
			// without moving the wallet, so the reconciliation sum skips them.
			"type": bson.M{"$ne": models.TransactionTypeCommission},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	return r.aggregateFloat(ctx, pipeline)
}

func (r *transactionRepository) SumWithdrawalsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    userID,
			"type":       models.TransactionTypeWithdrawal,
			"status":     models.TransactionStatusCompleted,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			// Withdrawal amounts are stored negative; the cap compares
			// positive totals.
			"total": bson.M{"$sum": bson.M{"$abs": "$amount"}},
		}}},
	}

	return r.aggregateFloat(ctx, pipeline)
}

func (r *transactionRepository) aggregateFloat(ctx context.Context, pipeline mongo.Pipeline) (float64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		var result struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode transaction aggregate: %w", err)
		}
		return result.Total, nil
	}

	return 0, nil
}
