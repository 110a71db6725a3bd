package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle belongs to a driver. A driver may accumulate vehicle rows over time
// but at most one carries is_active=1; that row is the "current" vehicle.
type Vehicle struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID     primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	Brand        string             `json:"brand" bson:"brand" validate:"required"`
	Model        string             `json:"model" bson:"model" validate:"required"`
	Color        string             `json:"color" bson:"color" validate:"required"`
	LicensePlate string             `json:"license_plate" bson:"license_plate" validate:"required"`
	IsActive     bool               `json:"is_active" bson:"is_active" default:"false"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
