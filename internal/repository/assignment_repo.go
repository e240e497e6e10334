package repository

import (
	"context"
	"time"

	"concierge-backend/internal/database"
	"concierge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type AssignmentRepo struct {
	collection *mongo.Collection
}

func NewAssignmentRepo() *AssignmentRepo {
	return &AssignmentRepo{
		collection: database.GetCollection("assignments"),
	}
}

func (r *AssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return err
	}
	assignment.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *AssignmentRepo) FindByConcierge(ctx context.Context, conciergeID bson.ObjectID) ([]models.Assignment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"concierge": conciergeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignments := []models.Assignment{}
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// DetachConcierge unlinks a deleted account from its assignments instead of
// deleting them; the property keeps its history.
func (r *AssignmentRepo) DetachConcierge(ctx context.Context, conciergeID bson.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"concierge": conciergeID}, bson.M{
		"$unset": bson.M{"concierge": ""},
		"$set":   bson.M{"status": "unassigned"},
	})
	return err
}

// EnsureIndexes creates necessary indexes for the assignments collection
func (r *AssignmentRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "concierge", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "property", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
