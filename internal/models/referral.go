package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCompleted ReferralStatus = "completed"
)

// ReferralCodeLength sizes the shareable invite code.
const ReferralCodeLength = 8

// Referral is one invitation slot. A row is created open (no referee) when
// the referrer asks for a code; redemption claims it by setting the referee
// and flipping the status. A code is single-use.
type Referral struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ReferrerID     primitive.ObjectID  `json:"referrer_id" bson:"referrer_id" validate:"required"`
	RefereeID      *primitive.ObjectID `json:"referee_id" bson:"referee_id"`
	ReferralCode   string              `json:"referral_code" bson:"referral_code" validate:"required"`
	Status         ReferralStatus      `json:"status" bson:"status" default:"pending"`
	ReferrerReward float64             `json:"referrer_reward" bson:"referrer_reward"`
	RefereeReward  float64             `json:"referee_reward" bson:"referee_reward"`
	CompletedAt    *time.Time          `json:"completed_at" bson:"completed_at"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}
