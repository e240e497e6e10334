package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// GeoPoint is a GeoJSON point: coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

type Address struct {
	Street      string   `bson:"street,omitempty" json:"street,omitempty"`
	PostalCode  string   `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	City        string   `bson:"city,omitempty" json:"city,omitempty"`
	Country     string   `bson:"country,omitempty" json:"country,omitempty"`
	Infos       string   `bson:"infos,omitempty" json:"infos,omitempty"`
	Coordinates GeoPoint `bson:"coordinates" json:"coordinates"`
}

// ServiceSet is the fixed capability map of a concierge account.
// Only these eight flags are ever persisted.
type ServiceSet struct {
	ListingCreation   bool `bson:"listing_creation" json:"listing_creation"`
	Housekeeping      bool `bson:"housekeeping" json:"housekeeping"`
	Laundry           bool `bson:"laundry" json:"laundry"`
	PriceOptimization bool `bson:"price_optimization" json:"price_optimization"`
	KeyHandover       bool `bson:"key_handover" json:"key_handover"`
	CheckIn           bool `bson:"checkin" json:"checkin"`
	CheckOut          bool `bson:"checkout" json:"checkout"`
	KeyLockbox        bool `bson:"key_lockbox" json:"key_lockbox"`
}

var validServiceKeys = map[string]bool{
	"listing_creation":   true,
	"housekeeping":       true,
	"laundry":            true,
	"price_optimization": true,
	"key_handover":       true,
	"checkin":            true,
	"checkout":           true,
	"key_lockbox":        true,
}

// IsValidServiceKey reports whether k is one of the eight known service flags.
func IsValidServiceKey(k string) bool {
	return validServiceKeys[k]
}

// FilterServiceKeys drops unknown keys from a client-supplied services map.
func FilterServiceKeys(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if validServiceKeys[k] {
			out[k] = v
		}
	}
	return out
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName    string        `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName     string        `bson:"last_name,omitempty" json:"lastName,omitempty"`
	Email        string        `bson:"email" json:"email"`
	ProfileImage string        `bson:"profile_image,omitempty" json:"profileImage,omitempty"`

	// Password holds the bcrypt hash and never leaves the server.
	Password string `bson:"password" json:"-"`

	// Token is the opaque account identifier generated at signup. It is
	// long-lived and distinct from the signed session tokens issued at signin.
	Token string `bson:"token" json:"token"`

	IsAdmin  bool `bson:"is_admin" json:"isAdmin"`
	IsBan    bool `bson:"is_ban" json:"isBan"`
	IsHost   bool `bson:"is_host" json:"isHost"`
	IsActive bool `bson:"is_active" json:"isActive"`

	ResetToken           string    `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpiration time.Time `bson:"reset_token_expiration,omitempty" json:"-"`

	Addresses []Address  `bson:"addresses,omitempty" json:"address"`
	Services  ServiceSet `bson:"services" json:"services"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
