package repository

import (
	"context"
	"errors"
	"time"

	"concierge-backend/internal/database"
	"concierge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNotFound is returned when an id or token matches no document.
var ErrNotFound = errors.New("user not found")

const (
	// maxSearchRadiusMeters bounds the proximity fallback of the concierge search.
	maxSearchRadiusMeters = 50000
	// maxNearbyResults caps how many concierges a proximity query returns.
	maxNearbyResults = 10
)

// IsDuplicate reports whether err is a unique-index violation (duplicate email).
func IsDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		collection: database.GetCollection("users"),
	}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	return r.findUsers(ctx, bson.M{}, nil)
}

// UpdateByID applies a $set of the given fields and returns the updated
// document. Returns ErrNotFound when the id matches nothing.
func (r *UserRepo) UpdateByID(ctx context.Context, id bson.ObjectID, set bson.M) (*models.User, error) {
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// ReplaceAddresses overwrites the whole address collection of a user.
// Addresses have no field-level merge: the incoming array wins.
func (r *UserRepo) ReplaceAddresses(ctx context.Context, id bson.ObjectID, addresses []models.Address) (*models.User, error) {
	return r.UpdateByID(ctx, id, bson.M{"addresses": addresses})
}

// MergeServices overwrites individual service flags, key by key. Unknown
// keys must already have been filtered out by the caller.
func (r *UserRepo) MergeServices(ctx context.Context, id bson.ObjectID, services map[string]bool) (*models.User, error) {
	set := bson.M{}
	for key, enabled := range services {
		set["services."+key] = enabled
	}
	return r.UpdateByID(ctx, id, set)
}

func (r *UserRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindConciergesByCity matches active hosts whose address city contains the
// given text, case-insensitively.
func (r *UserRepo) FindConciergesByCity(ctx context.Context, city string) ([]models.User, error) {
	filter := bson.M{
		"is_host":   true,
		"is_active": true,
		"addresses.city": bson.M{
			"$regex":   city,
			"$options": "i",
		},
	}
	return r.findUsers(ctx, filter, nil)
}

// FindConciergesNear returns active hosts within 50km of the given point,
// nearest first, capped at 10 results.
func (r *UserRepo) FindConciergesNear(ctx context.Context, lon, lat float64) ([]models.User, error) {
	filter := bson.M{
		"is_host":   true,
		"is_active": true,
		"addresses.coordinates": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lon, lat},
				},
				"$maxDistance": maxSearchRadiusMeters,
			},
		},
	}
	opts := options.Find().SetLimit(maxNearbyResults)
	return r.findUsers(ctx, filter, opts)
}

func (r *UserRepo) FindAllConcierges(ctx context.Context) ([]models.User, error) {
	return r.findUsers(ctx, bson.M{"is_host": true, "is_active": true}, nil)
}

// SearchConcierges filters hosts by required service flags, optional city
// text and optional exact postal code, conjunctively.
func (r *UserRepo) SearchConcierges(ctx context.Context, services []string, city, postalCode string) ([]models.User, error) {
	filter := bson.M{"is_host": true}
	for _, key := range services {
		filter["services."+key] = true
	}
	if city != "" {
		filter["addresses.city"] = bson.M{"$regex": city, "$options": "i"}
	}
	if postalCode != "" {
		filter["addresses.postal_code"] = postalCode
	}
	return r.findUsers(ctx, filter, nil)
}

// SetResetToken stores a password-reset token and its expiry on the account.
func (r *UserRepo) SetResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, bson.M{
		"$set": bson.M{
			"reset_token":            resetToken,
			"reset_token_expiration": expiresAt,
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) FindByResetToken(ctx context.Context, resetToken string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"reset_token": resetToken}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ResetPassword swaps in the new hash and invalidates the reset token in the
// same document write.
func (r *UserRepo) ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password":   passwordHash,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"reset_token":            "",
			"reset_token_expiration": "",
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) findUsers(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]models.User, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// EnsureIndexes creates necessary indexes for the users collection.
// The 2dsphere index backs the $near proximity search.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "addresses.coordinates", Value: "2dsphere"}},
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
