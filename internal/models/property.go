package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Property struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	Address   string        `bson:"address" json:"address"`
	Owner     bson.ObjectID `bson:"owner,omitempty" json:"owner"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
