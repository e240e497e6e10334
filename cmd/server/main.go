package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"concierge-backend/internal/config"
	"concierge-backend/internal/database"
	"concierge-backend/internal/handlers"
	"concierge-backend/internal/mailer"
	customMiddleware "concierge-backend/internal/middleware"
	"concierge-backend/internal/repository"
	"concierge-backend/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}

	// Connect to MongoDB
	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	propertyRepo := repository.NewPropertyRepo()
	assignmentRepo := repository.NewAssignmentRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create user indexes: %v", err)
	}
	if err := propertyRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create property indexes: %v", err)
	}
	if err := assignmentRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create assignment indexes: %v", err)
	}

	// Session token issuer
	issuer := token.NewIssuer(cfg.JWTSecret)

	// Email delivery: log-only unless a Resend key is configured
	var mail mailer.Mailer = mailer.NewLogMailer()
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, issuer, mail, cfg.AppBaseURL)
	userHandler := handlers.NewUserHandler(userRepo, assignmentRepo)
	searchHandler := handlers.NewSearchHandler(userRepo)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"concierge-backend"}`))
	})

	r.Route("/users", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/check-email", authHandler.CheckEmail)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Get("/", userHandler.List)
		r.Get("/concierges", searchHandler.Concierges)
		r.Get("/search/services", searchHandler.SearchServices)

		// Protected routes (JWT required)
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.JWTAuth(issuer))

			r.Get("/id", userHandler.Me)
			r.Put("/profile/update", userHandler.UpdateProfile)
			r.Put("/services/{id}", userHandler.UpdateServices)
			r.Patch("/address/{id}", userHandler.ReplaceAddresses)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	// Start server
	log.Printf("🚀 Concierge backend starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
