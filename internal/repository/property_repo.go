package repository

import (
	"context"
	"time"

	"concierge-backend/internal/database"
	"concierge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type PropertyRepo struct {
	collection *mongo.Collection
}

func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{
		collection: database.GetCollection("properties"),
	}
}

func (r *PropertyRepo) Create(ctx context.Context, property *models.Property) error {
	property.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		return err
	}
	property.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *PropertyRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Property, error) {
	var property models.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

// EnsureIndexes creates necessary indexes for the properties collection
func (r *PropertyRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	return err
}
