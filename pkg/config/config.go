// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects the record store implementation.
const (
	BackendJSONFile = "jsonfile"
	BackendPostgres = "postgres"
)

// Config holds the service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// ReadTimeout and WriteTimeout bound HTTP request handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// StoreBackend is "jsonfile" or "postgres".
	StoreBackend string

	// DataDir holds the collection files for the jsonfile backend.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string

	// KafkaBrokers enables the kafka event publisher when non-empty.
	KafkaBrokers []string

	// KafkaTopic overrides the default event topic.
	KafkaTopic string

	// WebhookURL enables the webhook event publisher when non-empty.
	WebhookURL string
}

// Load reads the configuration from the environment. A .env file is
// honored when present but never required.
func Load() Config {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Addr:         getEnv("ADDR", ":8080"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		StoreBackend: getEnv("STORE_BACKEND", BackendJSONFile),
		DataDir:      getEnv("DATA_DIR", "data"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", ""),
		WebhookURL:   getEnv("WEBHOOK_URL", ""),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
