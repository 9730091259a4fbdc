package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	UDPAddr         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Database Database

	// Optional Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Database holds the observation store settings.
type Database struct {
	Driver string
	URL    string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults where unset. Variables already set in the
// environment take precedence over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	db, err := loadDatabase()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		UDPAddr:         sharedcfg.EnvOrDefault("UDP_ADDR", "0.0.0.0:50222"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		Database:        db,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "tempest-observations"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.UDPAddr == "" {
		return nil, errors.New("UDP_ADDR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether observations are also published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// LoadDatabase reads only the storage settings, for tools that query the store.
func LoadDatabase() (Database, error) {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() (Database, error) {
	db := Database{
		Driver: sharedcfg.EnvOrDefault("DATABASE_DRIVER", "postgres"),
		URL:    os.Getenv("DATABASE_URL"),
	}
	switch db.Driver {
	case "postgres", "mysql":
	default:
		return Database{}, fmt.Errorf("invalid DATABASE_DRIVER %q: want postgres or mysql", db.Driver)
	}
	if db.URL == "" {
		return Database{}, errors.New("DATABASE_URL is required")
	}
	return db, nil
}
