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

type referralRepository struct {
	collection *mongo.Collection
}

func NewReferralRepository(db *mongo.Database) interfaces.ReferralRepository {
	return &referralRepository{
		collection: db.Collection("referrals"),
	}
}

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) error {
	referral.ID = primitive.NewObjectID()
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = referral.CreatedAt
	if referral.Status == "" {
		referral.Status = models.ReferralStatusPending
	}

	_, err := r.collection.InsertOne(ctx, referral)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("referral code %s already exists: %w", referral.ReferralCode, services.ErrConflict)
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}

	return nil
}

func (r *referralRepository) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	var referral models.Referral
	err := r.collection.FindOne(ctx, bson.M{"referral_code": code}).Decode(&referral)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("referral code %s: %w", code, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}

	return &referral, nil
}

func (r *referralRepository) GetOpenByReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.Referral, error) {
	filter := bson.M{
		"referrer_id": referrerID,
		"status":      models.ReferralStatusPending,
		"referee_id":  nil,
	}

	var referral models.Referral
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&referral)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("open referral for %s: %w", referrerID.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get open referral: %w", err)
	}

	return &referral, nil
}

func (r *referralRepository) GetByReferee(ctx context.Context, refereeID primitive.ObjectID) (*models.Referral, error) {
	var referral models.Referral
	err := r.collection.FindOne(ctx, bson.M{"referee_id": refereeID}).Decode(&referral)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("referral for referee %s: %w", refereeID.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}

	return &referral, nil
}

func (r *referralRepository) Complete(ctx context.Context, id, refereeID primitive.ObjectID) error {
	now := time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":        id,
			"status":     models.ReferralStatusPending,
			"referee_id": nil,
		},
		bson.M{"$set": bson.M{
			"referee_id":   refereeID,
			"status":       models.ReferralStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete referral: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, getErr := r.getByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("referral %s already claimed: %w", id.Hex(), services.ErrConflict)
	}

	return nil
}

func (r *referralRepository) GetByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.Referral, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"referrer_id": referrerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find referrals: %w", err)
	}
	defer cursor.Close(ctx)

	var referrals []*models.Referral
	for cursor.Next(ctx) {
		var referral models.Referral
		if err := cursor.Decode(&referral); err != nil {
			return nil, fmt.Errorf("failed to decode referral: %w", err)
		}
		referrals = append(referrals, &referral)
	}

	return referrals, nil
}

func (r *referralRepository) getByID(ctx context.Context, id primitive.ObjectID) (*models.Referral, error) {
	var referral models.Referral
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&referral)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("referral %s: %w", id.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}

	return &referral, nil
}
