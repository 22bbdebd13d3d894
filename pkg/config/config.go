package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/lumeo-app/backend/pkg/logger"
)

type Config struct {
	Port      string
	Env       string
	MongoURI  string
	MongoDB   string
	JWTSecret string
}

func Load() *Config {
	// Load environment variables from .env file when present
	if err := godotenv.Load(); err != nil {
		logger.Warn.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:   getEnv("MONGO_DB", "lumeo"),
		JWTSecret: getEnv("JWT_SECRET", "supersecretjwtkey"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
