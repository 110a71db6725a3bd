package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DriverFreshnessWindow is the read-time staleness cutoff: a driver counts
	// as available only if their last position ping is younger than this.
	DriverFreshnessWindow = 5 * time.Minute

	// DriverInactiveCutoff is the sweep threshold: drivers silent for longer
	// are flipped to unavailable by the periodic cleanup job.
	DriverInactiveCutoff = 30 * time.Minute
)

// DriverStatus is the single availability row per driver, upserted on first
// contact and mutated by the driver's own pings and toggles.
type DriverStatus struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID    primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	IsAvailable bool               `json:"is_available" bson:"is_available" default:"false"`
	Latitude    *float64           `json:"latitude" bson:"latitude"`
	Longitude   *float64           `json:"longitude" bson:"longitude"`
	Heading     float64            `json:"heading" bson:"heading"`
	Speed       float64            `json:"speed" bson:"speed"`
	LastUpdate  time.Time          `json:"last_update" bson:"last_update"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// HasPosition reports whether the driver has ever pinged a location.
func (d *DriverStatus) HasPosition() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// IsFresh reports whether the row satisfies the read-time freshness rule at
// the given instant.
func (d *DriverStatus) IsFresh(now time.Time) bool {
	return now.Sub(d.LastUpdate) < DriverFreshnessWindow
}

// NearbyDriver is a DriverStatus annotated with its distance from a query
// point, as returned by the radius search.
type NearbyDriver struct {
	DriverStatus
	DistanceKM float64 `json:"distance_km" bson:"distance_km"`
}
