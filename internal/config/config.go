package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the process reads from the environment. It is
// built once in main and passed down; no component reads env vars directly.
type Config struct {
	MongoURI     string
	DBName       string
	JWTSecret    string
	Port         string
	ResendAPIKey string
	FromEmail    string
	AppBaseURL   string
}

// Load reads .env (best-effort) and assembles the Config. Required-field
// enforcement is left to the caller so tests can build partial configs.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		MongoURI:     getEnv("MONGODB_URI", ""),
		DBName:       getEnv("DB_NAME", "concierge"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		Port:         getEnv("PORT", "8080"),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "no-reply@localhost"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
