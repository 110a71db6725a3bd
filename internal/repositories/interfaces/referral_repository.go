package interfaces

import (
	"context"

	"tripsalama/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByCode(ctx context.Context, code string) (*models.Referral, error)

	// GetOpenByReferrer returns the referrer's unclaimed invitation, if any.
	GetOpenByReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.Referral, error)

	// GetByReferee returns the referral the user redeemed; a user redeems at
	// most one code.
	GetByReferee(ctx context.Context, refereeID primitive.ObjectID) (*models.Referral, error)

	// Complete claims an open referral for the referee. The update is
	// conditional on the row still being pending and unclaimed; losing that
	// race surfaces as ErrConflict.
	Complete(ctx context.Context, id, refereeID primitive.ObjectID) error

	GetByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.Referral, error)
}
