package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Recognizer strategies
const (
	RecognizerMock        = "mock"
	RecognizerRekognition = "rekognition"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `yaml:"server_port"`
	ServerHost string `yaml:"server_host"`

	// Entry store configuration
	StoreBackend string `yaml:"store_backend"`
	DiaryFile    string `yaml:"diary_file"`
	SQLitePath   string `yaml:"sqlite_path"`

	// Database configuration, used by the postgres backend
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`

	// Redis configuration. Caching and rate limiting are off when no Redis is set.
	RedisHost     string        `yaml:"redis_host"`
	RedisPort     string        `yaml:"redis_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisURL      string        `yaml:"redis_url"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	// Recognition configuration
	Recognizer       string        `yaml:"recognizer"`
	RecognitionDelay time.Duration `yaml:"recognition_delay"`

	// AWS configuration, used by S3 image offload and Rekognition
	AWSRegion    string `yaml:"aws_region"`
	S3BucketName string `yaml:"s3_bucket_name"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerPort:         "3000",
		ServerHost:         "0.0.0.0",
		StoreBackend:       BackendFile,
		DiaryFile:          "foodDiary.json",
		SQLitePath:         "foodDiary.db",
		DBPort:             "5432",
		DBSSLMode:          "disable",
		RedisPort:          "6379",
		CacheTTL:           5 * time.Minute,
		RateLimitPerMinute: 60,
		Recognizer:         RecognizerMock,
		RecognitionDelay:   2 * time.Second,
	}
}

// LoadConfig creates a new Config from defaults, the optional YAML file named by
// NUTRISCAN_CONFIG, and environment variables or secrets, in that order
func LoadConfig() (*Config, error) {
	// A missing .env file is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	cfg := Default()

	if path := os.Getenv("NUTRISCAN_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	env := GetEnvironment()
	switch env {
	case CI:
		applyOverrides(cfg, os.Getenv)
	case Development, Test:
		applyOverrides(cfg, envThenSecret)
	case Production:
		applyOverrides(cfg, secretThenEnv)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays a YAML config file onto cfg
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse YAML config %s: %w", path, err)
	}
	return nil
}

// applyOverrides sets every field whose key resolves to a non-empty value
func applyOverrides(cfg *Config, lookup func(string) string) {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := lookup(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.ServerPort, "PORT", "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.DiaryFile, "DIARY_FILE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.Recognizer, "RECOGNIZER")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.S3BucketName, "S3_BUCKET_NAME")

	if v := lookup("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := lookup("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = n
		}
	}
	if v := lookup("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := lookup("RECOGNITION_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RecognitionDelay = d
		}
	}
}

// RedisEnabled reports whether a Redis server has been configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func envThenSecret(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return readSecret(strings.ToLower(key))
}

func secretThenEnv(key string) string {
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return os.Getenv(key)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
