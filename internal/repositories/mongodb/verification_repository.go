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

type verificationRepository struct {
	collection *mongo.Collection
}

func NewVerificationRepository(db *mongo.Database) interfaces.VerificationRepository {
	return &verificationRepository{
		collection: db.Collection("identity_verifications"),
	}
}

func (r *verificationRepository) Create(ctx context.Context, verification *models.IdentityVerification) error {
	verification.ID = primitive.NewObjectID()
	verification.CreatedAt = time.Now()
	verification.UpdatedAt = verification.CreatedAt
	if verification.Status == "" {
		verification.Status = models.VerificationStatusPending
	}

	_, err := r.collection.InsertOne(ctx, verification)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}

	return nil
}

func (r *verificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.IdentityVerification, error) {
	var verification models.IdentityVerification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&verification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("verification %s: %w", id.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	return &verification, nil
}

func (r *verificationRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.IdentityVerification, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var verification models.IdentityVerification
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&verification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("verification for user %s: %w", userID.Hex(), services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest verification: %w", err)
	}

	return &verification, nil
}

func (r *verificationRepository) GetPendingManualReviews(ctx context.Context, limit int) ([]*models.IdentityVerification, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"status": models.VerificationStatusPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending verifications: %w", err)
	}
	defer cursor.Close(ctx)

	var verifications []*models.IdentityVerification
	for cursor.Next(ctx) {
		var verification models.IdentityVerification
		if err := cursor.Decode(&verification); err != nil {
			return nil, fmt.Errorf("failed to decode verification: %w", err)
		}
		verifications = append(verifications, &verification)
	}

	return verifications, nil
}

func (r *verificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, reviewerID *primitive.ObjectID, note string) error {
	now := time.Now()
	update := bson.M{
		"status":      status,
		"review_note": note,
		"reviewed_at": now,
		"updated_at":  now,
	}
	if reviewerID != nil {
		update["reviewer_id"] = *reviewerID
	}

	// Only a pending attempt may be decided; a second decision is a conflict.
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.VerificationStatusPending},
		bson.M{"$set": update},
	)
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("verification %s already decided: %w", id.Hex(), services.ErrConflict)
	}

	return nil
}
