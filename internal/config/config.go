package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Classify    ClassifyConfig
	Scrape      ScrapeConfig
	Ingest      IngestConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// ClassifyConfig controls the image/trend classifier
type ClassifyConfig struct {
	OpenAIKey string
	Model     string
	UseMock   bool
}

// ScrapeConfig controls the social scrape clients
type ScrapeConfig struct {
	APIToken       string
	BaseURL        string
	RequestTimeout time.Duration
	MaxPostsPerRun int
}

// IngestConfig controls trend ingestion and scoring
type IngestConfig struct {
	RefreshInterval time.Duration
	SnapshotWindow  time.Duration
	MinMentions     int
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendintel"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("NATS_EVENTS_TOPIC", "trend"),
		},
		Classify: ClassifyConfig{
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("CLASSIFY_MODEL", ""),
			UseMock:   getEnvAsBool("CLASSIFY_USE_MOCK", false),
		},
		Scrape: ScrapeConfig{
			APIToken:       getEnv("SCRAPE_API_TOKEN", ""),
			BaseURL:        getEnv("SCRAPE_BASE_URL", "https://api.apify.com"),
			RequestTimeout: getEnvAsDuration("SCRAPE_REQUEST_TIMEOUT", 120*time.Second),
			MaxPostsPerRun: getEnvAsInt("SCRAPE_MAX_POSTS_PER_RUN", 30),
		},
		Ingest: IngestConfig{
			RefreshInterval: getEnvAsDuration("INGEST_REFRESH_INTERVAL", 6*time.Hour),
			SnapshotWindow:  getEnvAsDuration("INGEST_SNAPSHOT_WINDOW", 24*time.Hour),
			MinMentions:     getEnvAsInt("INGEST_MIN_MENTIONS", 2),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if !config.Classify.UseMock && config.Classify.OpenAIKey == "" && config.Environment != "development" {
		return fmt.Errorf("OPENAI_API_KEY must be set when the mock classifier is disabled")
	}
	if config.Ingest.MinMentions < 1 {
		return fmt.Errorf("INGEST_MIN_MENTIONS must be at least 1")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
