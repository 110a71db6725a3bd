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

type walletRepository struct {
	collection *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) interfaces.WalletRepository {
	return &walletRepository{
		collection: db.Collection("wallets"),
	}
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("wallet for user %s: %w", userID.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// GetOrCreate upserts on user_id and reads back the stored row. Returning
// the persisted document rather than an in-memory default keeps concurrent
// creators from observing divergent wallets.
func (r *walletRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID, currency string) (*models.Wallet, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$setOnInsert": bson.M{
				"user_id":    userID,
				"balance":    0.0,
				"currency":   currency,
				"is_active":  true,
				"created_at": now,
				"updated_at": now,
			},
		},
		opts,
	).Decode(&wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID primitive.ObjectID, amount float64, currency string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", services.ErrValidation)
	}

	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": bson.M{"balance": amount},
			"$set": bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"user_id":    userID,
				"currency":   currency,
				"is_active":  true,
				"created_at": now,
			},
		},
		opts,
	).Decode(&wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	return &wallet, nil
}

// Debit is the only path that lowers a balance. The balance guard lives in
// the update filter itself, so concurrent debits serialize on the document
// and the loser gets ErrInsufficientFunds rather than a silent no-op.
func (r *walletRepository) Debit(ctx context.Context, userID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive: %w", services.ErrValidation)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"user_id": userID,
			"balance": bson.M{"$gte": amount},
		},
		bson.M{
			"$inc": bson.M{"balance": -amount},
			"$set": bson.M{"updated_at": time.Now()},
		},
		opts,
	).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a missing wallet from an underfunded one.
			if _, lookupErr := r.GetByUserID(ctx, userID); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, fmt.Errorf("balance below %.2f for user %s: %w", amount, userID.Hex(), services.ErrInsufficientFunds)
		}
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	return &wallet, nil
}
