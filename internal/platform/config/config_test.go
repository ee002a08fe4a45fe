package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"LOANFLOW_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "TOKEN_TTL", "MAX_DOCUMENT_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(10<<20), cfg.Document.MaxBytes)
	assert.Equal(t, "@every 1m", cfg.Jobs.StatusGaugeSchedule)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LOANFLOW_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("MAX_DOCUMENT_BYTES", "1024")
	t.Setenv("SEED_STAFF", "false")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, int64(1024), cfg.Document.MaxBytes)
	assert.False(t, cfg.SeedStaff)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("REDIS_POOL_SIZE", "-3")

	cfg := FromEnv()

	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}
