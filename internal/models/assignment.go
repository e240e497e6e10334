package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Assignment links a property to the concierge looking after it.
type Assignment struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Property  bson.ObjectID `bson:"property" json:"property"`
	Concierge bson.ObjectID `bson:"concierge,omitempty" json:"concierge"`
	Status    string        `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
