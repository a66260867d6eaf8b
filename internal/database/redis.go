package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/nutriscan/backend/config"
)

const (
	redisClientName  = "nutriscan"
	redisDialTimeout = 5 * time.Second
)

// ErrRedisNotConfigured is returned when neither REDIS_URL nor REDIS_HOST is set
var ErrRedisNotConfigured = errors.New("redis is not configured")

// RedisOptions builds client options from cfg. REDIS_URL takes precedence over
// the host settings; a URL without credentials still uses REDIS_PASSWORD, and
// a URL without a database path uses REDIS_DB.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.RedisURL != "":
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if parsed.Password == "" {
			parsed.Password = cfg.RedisPassword
		}
		if parsed.DB == 0 {
			parsed.DB = cfg.RedisDB
		}
		opts = parsed
	case cfg.RedisHost != "":
		opts = &redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	default:
		return nil, ErrRedisNotConfigured
	}

	opts.ClientName = redisClientName
	opts.DialTimeout = redisDialTimeout
	return opts, nil
}

// NewRedisClient connects to the Redis server backing the list cache and the
// write rate limiter
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.Printf("[Redis] Connected to %s (db %d)", opts.Addr, opts.DB)
	return client, nil
}
