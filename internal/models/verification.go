package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

const (
	// AutoApproveLabel and AutoApproveConfidence gate automatic approval:
	// only a female classification at or above 0.85 skips manual review.
	AutoApproveLabel      = "female"
	AutoApproveConfidence = 0.85
)

// IdentityVerification is one verification attempt for a driver account,
// carrying the AI classifier's output. Attempts below the auto-approve bar
// queue for manual review in FIFO order.
type IdentityVerification struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	Status       VerificationStatus  `json:"status" bson:"status" default:"pending"`
	AILabel      string              `json:"ai_label" bson:"ai_label"`
	AIConfidence float64             `json:"ai_confidence" bson:"ai_confidence"`
	PhotoURL     string              `json:"photo_url" bson:"photo_url"`
	ReviewerID   *primitive.ObjectID `json:"reviewer_id" bson:"reviewer_id"`
	ReviewNote   string              `json:"review_note" bson:"review_note"`
	ReviewedAt   *time.Time          `json:"reviewed_at" bson:"reviewed_at"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

// QualifiesForAutoApproval applies the classifier gate.
func (v *IdentityVerification) QualifiesForAutoApproval() bool {
	return v.AILabel == AutoApproveLabel && v.AIConfidence >= AutoApproveConfidence
}
