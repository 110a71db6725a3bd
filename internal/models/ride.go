package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusPending       RideStatus = "pending"
	RideStatusAccepted      RideStatus = "accepted"
	RideStatusDriverArrived RideStatus = "driver_arriving"
	RideStatusInProgress    RideStatus = "in_progress"
	RideStatusCompleted     RideStatus = "completed"
	RideStatusCancelled     RideStatus = "cancelled"
)

// rideTransitions is the only source of truth for legal status changes.
// Cancellation is reachable from every non-terminal state; everything else
// moves strictly forward.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusPending:       {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:      {RideStatusDriverArrived, RideStatusInProgress, RideStatusCancelled},
	RideStatusDriverArrived: {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress:    {RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted:     {},
	RideStatusCancelled:     {},
}

// IsValid reports whether s is one of the known ride states.
func (s RideStatus) IsValid() bool {
	_, ok := rideTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible from s.
func (s RideStatus) IsTerminal() bool {
	return len(rideTransitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo reports whether the transition s -> target is legal.
func (s RideStatus) CanTransitionTo(target RideStatus) bool {
	for _, allowed := range rideTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ActiveRideStatuses are the non-terminal states, in lifecycle order.
func ActiveRideStatuses() []RideStatus {
	return []RideStatus{
		RideStatusPending,
		RideStatusAccepted,
		RideStatusDriverArrived,
		RideStatusInProgress,
	}
}

// Ride is one passenger transport request tracked through the lifecycle.
// DriverID and VehicleID stay nil until the transition to accepted sets both
// atomically; no other transition touches them. A non-nil ScheduledAt keeps
// the ride pending but hidden from drivers until the scheduled time arrives.
type Ride struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RideNumber        string              `json:"ride_number" bson:"ride_number"`
	PassengerID       primitive.ObjectID  `json:"passenger_id" bson:"passenger_id" validate:"required"`
	DriverID          *primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	VehicleID         *primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id"`
	Status            RideStatus          `json:"status" bson:"status" default:"pending"`
	PickupLocation    Location            `json:"pickup_location" bson:"pickup_location" validate:"required"`
	DropoffLocation   Location            `json:"dropoff_location" bson:"dropoff_location" validate:"required"`
	EstimatedDistance float64             `json:"estimated_distance" bson:"estimated_distance"` // kilometers
	EstimatedDuration int                 `json:"estimated_duration" bson:"estimated_duration"` // minutes
	EstimatedPrice    float64             `json:"estimated_price" bson:"estimated_price"`
	Currency          string              `json:"currency" bson:"currency" default:"MAD"`
	RoutePolyline     string              `json:"route_polyline" bson:"route_polyline"`
	ScheduledAt       *time.Time          `json:"scheduled_at" bson:"scheduled_at"`
	CancellationReason string             `json:"cancellation_reason" bson:"cancellation_reason"`
	CancelledBy       string              `json:"cancelled_by" bson:"cancelled_by"`
	AcceptedAt        *time.Time          `json:"accepted_at" bson:"accepted_at"`
	ArrivingAt        *time.Time          `json:"arriving_at" bson:"arriving_at"`
	StartedAt         *time.Time          `json:"started_at" bson:"started_at"`
	CompletedAt       *time.Time          `json:"completed_at" bson:"completed_at"`
	CancelledAt       *time.Time          `json:"cancelled_at" bson:"cancelled_at"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
}

// RidePosition is one row of the append-only position log. Rows are never
// updated or deleted; the latest row per ride is the current position.
type RidePosition struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID     primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	Latitude   float64            `json:"latitude" bson:"latitude" validate:"required"`
	Longitude  float64            `json:"longitude" bson:"longitude" validate:"required"`
	Heading    float64            `json:"heading" bson:"heading"`
	Speed      float64            `json:"speed" bson:"speed"`
	RecordedAt time.Time          `json:"recorded_at" bson:"recorded_at"`
}

// DriverStats is the live rollup over a driver's completed rides.
type DriverStats struct {
	TotalRides      int64   `json:"total_rides" bson:"total_rides"`
	CompletedRides  int64   `json:"completed_rides" bson:"completed_rides"`
	CancelledRides  int64   `json:"cancelled_rides" bson:"cancelled_rides"`
	TotalEarnings   float64 `json:"total_earnings" bson:"total_earnings"`
	TotalDistanceKM float64 `json:"total_distance_km" bson:"total_distance_km"`
}
