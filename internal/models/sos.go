package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSStatus string

const (
	SOSStatusActive     SOSStatus = "active"
	SOSStatusResolved   SOSStatus = "resolved"
	SOSStatusFalseAlarm SOSStatus = "false_alarm"
)

// SOS is an emergency alert raised by a passenger or driver, usually tied to
// an in-progress ride.
type SOS struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	RideID     *primitive.ObjectID `json:"ride_id" bson:"ride_id"`
	Status     SOSStatus           `json:"status" bson:"status" default:"active"`
	Location   Location            `json:"location" bson:"location" validate:"required"`
	Message    string              `json:"message" bson:"message"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
	ResolvedAt *time.Time          `json:"resolved_at" bson:"resolved_at"`
}
