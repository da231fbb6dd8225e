package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Versioning VersioningConfig
	AWS        AWSConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	BodyLimit string
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	URL          string
	MaxOpenConns int
}

type VersioningConfig struct {
	// PointerMoveAttempts bounds how many times a pointer move is tried
	// inside one operation before the failure is surfaced.
	PointerMoveAttempts int
	RepairInterval      time.Duration
}

type AWSConfig struct {
	Region            string
	S3Bucket          string
	WSGatewayEndpoint string
}

type LoggingConfig struct {
	Level string
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load builds the configuration from the environment. Outside production the
// variables are read from .env first; in production they are pulled from the
// SSM parameter store.
func Load() (*Config, error) {
	if os.Getenv("GO_ENV") == "production" {
		if err := loadProdEnv(); err != nil {
			return nil, err
		}
	} else if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the current process environment only.
func FromEnv() (*Config, error) {
	repairInterval, err := time.ParseDuration(getEnv("REPAIR_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPAIR_INTERVAL: %w", err)
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER %q, expected %s or %s", driver, DriverSQLite, DriverPostgres)
	}

	defaultConns := 1
	if driver == DriverPostgres {
		defaultConns = 10
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "7070"),
			Env:       getEnv("GO_ENV", "development"),
			BodyLimit: getEnv("BODY_LIMIT", "2M"),
		},
		Database: DatabaseConfig{
			Driver:       driver,
			Path:         getEnv("DB_PATH", "database.db"),
			URL:          getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", defaultConns),
		},
		Versioning: VersioningConfig{
			PointerMoveAttempts: getEnvAsInt("POINTER_MOVE_ATTEMPTS", 3),
			RepairInterval:      repairInterval,
		},
		AWS: AWSConfig{
			Region:            getEnv("AWS_REGION", "us-east-2"),
			S3Bucket:          getEnv("S3_BUCKET_NAME", ""),
			WSGatewayEndpoint: getEnv("WS_GATEWAY_ENDPOINT", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Database.Driver == DriverPostgres && cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
	}
	if cfg.Versioning.PointerMoveAttempts < 1 {
		cfg.Versioning.PointerMoveAttempts = 1
	}
	return cfg, nil
}

// LogLevel maps the configured level name onto gommon's levels.
func (l LoggingConfig) LogLevel() log.Lvl {
	switch strings.ToLower(l.Level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

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
