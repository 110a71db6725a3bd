package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeLocation MessageType = "location"
	MessageTypeSystem   MessageType = "system"
)

// Message is an append-only chat entry scoped to one ride. Only the ride's
// passenger and driver may read or write; the check lives in the chat service,
// not the schema.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID    primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	SenderID  primitive.ObjectID `json:"sender_id" bson:"sender_id" validate:"required"`
	Type      MessageType        `json:"type" bson:"type" default:"text"`
	Content   string             `json:"content" bson:"content" validate:"required"`
	IsRead    bool               `json:"is_read" bson:"is_read" default:"false"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
