package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	TokenExpiry time.Duration

	// OperationTimeout bounds every single backend call made by the
	// repositories.
	OperationTimeout time.Duration

	// UseTransactions requires a replica set; disable for standalone Mongo,
	// in which case multi-document transitions run best-effort and the
	// consistency sweeper repairs partial failures.
	UseTransactions bool
}

// LoadConfig reads configuration from .env / environment variables.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	expiryHours := getInt("TOKEN_EXPIRY_HOURS", 72)
	opTimeout := getInt("OPERATION_TIMEOUT_SECONDS", 10)

	return &Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "friend_circle"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry:      time.Duration(expiryHours) * time.Hour,
		OperationTimeout: time.Duration(opTimeout) * time.Second,
		UseTransactions:  getBool("MONGO_TRANSACTIONS", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField(key, value).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logrus.WithField(key, value).Warn("Invalid boolean in environment, using default")
		return fallback
	}
	return b
}
