package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeTopup      TransactionType = "topup"
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeCommission TransactionType = "commission"
	TransactionTypeTip        TransactionType = "tip"
	TransactionTypePromo      TransactionType = "promo"
	TransactionTypeReferral   TransactionType = "referral"
	TransactionTypeWithdrawal TransactionType = "withdrawal"

	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusRefunded   TransactionStatus = "refunded"
)

// Transaction is an immutable audit record of one financial event. Amount is
// signed: commission rows always store the negative of the platform's take.
// After creation only Status, ErrorMessage and ProcessedAt may change.
type Transaction struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	WalletID      *primitive.ObjectID `json:"wallet_id" bson:"wallet_id"`
	RideID        *primitive.ObjectID `json:"ride_id" bson:"ride_id"`
	Type          TransactionType     `json:"type" bson:"type" validate:"required"`
	Status        TransactionStatus   `json:"status" bson:"status" default:"pending"`
	Amount        float64             `json:"amount" bson:"amount" validate:"required"`
	Currency      string              `json:"currency" bson:"currency" default:"MAD"`
	Description   string              `json:"description" bson:"description"`
	Reference     string              `json:"reference" bson:"reference"`
	Provider      string              `json:"provider" bson:"provider"`
	BalanceBefore float64             `json:"balance_before" bson:"balance_before"`
	BalanceAfter  float64             `json:"balance_after" bson:"balance_after"`
	Metadata      map[string]string   `json:"metadata" bson:"metadata"`
	ErrorMessage  string              `json:"error_message" bson:"error_message"`
	ProcessedAt   *time.Time          `json:"processed_at" bson:"processed_at"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

// TransactionStats is the ad hoc rollup over a user's ledger.
type TransactionStats struct {
	TotalCount     int64   `json:"total_count" bson:"total_count"`
	CompletedCount int64   `json:"completed_count" bson:"completed_count"`
	FailedCount    int64   `json:"failed_count" bson:"failed_count"`
	TotalCredited  float64 `json:"total_credited" bson:"total_credited"`
	TotalDebited   float64 `json:"total_debited" bson:"total_debited"`
}
