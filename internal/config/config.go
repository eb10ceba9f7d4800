package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey       string
	DatabasePath       string
	EmbeddingCachePath string
	HTTPPort           string
	LogLevel           string
	JWTSecret          string
	EmbedInterval      time.Duration // delay between embedding requests during a cache rebuild
	DBBusyTimeout      time.Duration
}

var AppConfig Config

func LoadConfig() Config {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "database.db"),
		EmbeddingCachePath: getEnv("EMBEDDING_CACHE_PATH", "rag_cache.json"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		EmbedInterval:      time.Duration(getEnvAsInt("EMBED_INTERVAL_MS", 40)) * time.Millisecond,
		DBBusyTimeout:      time.Duration(getEnvAsInt("DB_BUSY_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
	return AppConfig
}

// Validate reports the settings the server cannot run without. Tools that
// only read the database or the cache do not need to call it.
func (c Config) Validate() error {
	var errs []error
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY environment variable is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is required"))
	}
	return errors.Join(errs...)
}

// ValidateRebuild reports the settings a cache rebuild needs. A rebuild only
// calls the embedding model, so no JWT secret is required.
func (c Config) ValidateRebuild() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is required")
	}
	return nil
}

func (c Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
