package main

import (
	"context"
	"log"
	"time"

	"concierge-backend/internal/auth"
	"concierge-backend/internal/config"
	"concierge-backend/internal/database"
	"concierge-backend/internal/models"
	"concierge-backend/internal/repository"

	"github.com/google/uuid"
)

// Seeds a handful of demo concierge accounts for local development.
// Every account signs in with the password "password123".

type seedUser struct {
	firstName  string
	lastName   string
	email      string
	city       string
	postalCode string
	lon, lat   float64
	services   models.ServiceSet
}

var roster = []seedUser{
	{
		firstName: "Camille", lastName: "Laurent", email: "camille@example.com",
		city: "Paris", postalCode: "75011", lon: 2.3522, lat: 48.8566,
		services: models.ServiceSet{ListingCreation: true, Housekeeping: true, CheckIn: true, CheckOut: true},
	},
	{
		firstName: "Hugo", lastName: "Moreau", email: "hugo@example.com",
		city: "Paris", postalCode: "75018", lon: 2.3412, lat: 48.8922,
		services: models.ServiceSet{KeyHandover: true, KeyLockbox: true, CheckIn: true},
	},
	{
		firstName: "Inès", lastName: "Garnier", email: "ines@example.com",
		city: "Lyon", postalCode: "69002", lon: 4.8357, lat: 45.7640,
		services: models.ServiceSet{Housekeeping: true, Laundry: true, PriceOptimization: true},
	},
	{
		firstName: "Théo", lastName: "Dubois", email: "theo@example.com",
		city: "Villeurbanne", postalCode: "69100", lon: 4.8795, lat: 45.7719,
		services: models.ServiceSet{ListingCreation: true, PriceOptimization: true, CheckOut: true},
	},
}

func main() {
	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}

	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	userRepo := repository.NewUserRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create user indexes: %v", err)
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("❌ Failed to hash seed password: %v", err)
	}

	for _, s := range roster {
		existing, err := userRepo.FindByEmail(ctx, s.email)
		if err != nil {
			log.Fatalf("❌ Failed to check %s: %v", s.email, err)
		}
		if existing != nil {
			log.Printf("Skipping %s, already seeded", s.email)
			continue
		}

		user := &models.User{
			FirstName: s.firstName,
			LastName:  s.lastName,
			Email:     s.email,
			Password:  hash,
			Token:     uuid.New().String(),
			IsHost:    true,
			IsActive:  true,
			Addresses: []models.Address{
				{
					City:        s.city,
					PostalCode:  s.postalCode,
					Country:     "France",
					Coordinates: models.NewGeoPoint(s.lon, s.lat),
				},
			},
			Services: s.services,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("❌ Failed to seed %s: %v", s.email, err)
		}
		log.Printf("Seeded concierge %s (%s)", s.email, s.city)
	}

	log.Println("✅ Seeding complete")
}
