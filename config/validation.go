package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks that the configuration is usable
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	switch cfg.StoreBackend {
	case BackendFile:
		if cfg.DiaryFile == "" {
			errs = append(errs, ValidationError{Field: "DIARY_FILE", Message: "required for the file backend"})
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "required for the sqlite backend"})
		}
	case BackendPostgres:
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{Field: field, Message: "required for the postgres backend"})
			}
		}
	default:
		errs = append(errs, ValidationError{Field: "STORE_BACKEND", Message: fmt.Sprintf("unknown backend %q", cfg.StoreBackend)})
	}

	switch cfg.Recognizer {
	case RecognizerMock:
		if cfg.RecognitionDelay < 0 {
			errs = append(errs, ValidationError{Field: "RECOGNITION_DELAY", Message: "must not be negative"})
		}
	case RecognizerRekognition:
		if cfg.AWSRegion == "" {
			errs = append(errs, ValidationError{Field: "AWS_REGION", Message: "required for the rekognition recognizer"})
		}
	default:
		errs = append(errs, ValidationError{Field: "RECOGNIZER", Message: fmt.Sprintf("unknown recognizer %q", cfg.Recognizer)})
	}

	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
