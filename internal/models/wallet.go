package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet is the per-user stored-value balance. One row per user, enforced by
// a unique index on user_id. The balance is only ever mutated through the
// wallet service's atomic credit/debit primitives, each of which writes a
// matching transaction row in the same database transaction.
type Wallet struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Balance   float64            `json:"balance" bson:"balance" default:"0"`
	Currency  string             `json:"currency" bson:"currency" default:"MAD"`
	IsActive  bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
