package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	NoteIndexName string // GSI1 - direct note lookups by ID
	TagIndexName  string // GSI2 - direct tag lookups by ID

	// Attachment storage
	AttachmentBucket  string
	AttachmentBaseURL string

	// Blob cleanup worker
	CleanupInterval    time.Duration
	CleanupMaxAttempts int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS bool

	// Storage driver: "dynamodb" or "memory" (local development)
	StorageDriver string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "notes")),
		NoteIndexName: getEnv("NOTE_INDEX_NAME", "NoteIndex"),
		TagIndexName:  getEnv("TAG_INDEX_NAME", "TagIndex"),

		AttachmentBucket:  getEnv("ATTACHMENT_BUCKET", "notes-attachments"),
		AttachmentBaseURL: getEnv("ATTACHMENT_BASE_URL", ""),

		CleanupInterval:    time.Duration(getEnvInt("CLEANUP_INTERVAL_SECONDS", 30)) * time.Second,
		CleanupMaxAttempts: getEnvInt("CLEANUP_MAX_ATTEMPTS", 5),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "notes-backend"),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),

		StorageDriver: getEnv("STORAGE_DRIVER", "dynamodb"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.StorageDriver != "dynamodb" && c.StorageDriver != "memory" {
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.AttachmentBucket == "" {
			return fmt.Errorf("ATTACHMENT_BUCKET is required")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
