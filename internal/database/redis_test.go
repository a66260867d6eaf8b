package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriscan/backend/config"
)

func TestRedisOptionsFromHost(t *testing.T) {
	cfg := config.Default()
	cfg.RedisHost = "cache"
	cfg.RedisPassword = "secret"
	cfg.RedisDB = 3

	opts, err := RedisOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, "nutriscan", opts.ClientName)
}

func TestRedisOptionsURLWins(t *testing.T) {
	cfg := config.Default()
	cfg.RedisHost = "ignored"
	cfg.RedisURL = "redis://:fromurl@redis.internal:6380/2"
	cfg.RedisPassword = "fromenv"

	opts, err := RedisOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, "fromurl", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestRedisOptionsURLFallsBackToSettings(t *testing.T) {
	cfg := config.Default()
	cfg.RedisURL = "redis://redis.internal:6380"
	cfg.RedisPassword = "fromenv"
	cfg.RedisDB = 4

	opts, err := RedisOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", opts.Password)
	assert.Equal(t, 4, opts.DB)
}

func TestRedisOptionsErrors(t *testing.T) {
	cfg := config.Default()
	cfg.RedisHost = ""
	_, err := RedisOptions(cfg)
	assert.ErrorIs(t, err, ErrRedisNotConfigured)

	cfg.RedisURL = "http://redis.internal"
	_, err = RedisOptions(cfg)
	assert.ErrorContains(t, err, "invalid REDIS_URL")
}
