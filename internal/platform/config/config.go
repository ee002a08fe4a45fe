package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr             = ":8080"
	defaultJWTSigningKey    = "dev-secret-key-change-in-production"
	defaultJWTIssuer        = "loanflow"
	defaultTokenTTL         = 24 * time.Hour
	defaultMaxDocumentBytes = 10 << 20
	defaultKafkaTopic       = "loanflow.workflow-events"
	defaultGaugeSchedule    = "@every 1m"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	SeedStaff     bool

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Document DocumentConfig
	Jobs     JobsConfig
}

// DatabaseConfig configures the postgres connection. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the unread-count cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UnreadTTL    time.Duration
}

// KafkaConfig configures the workflow event publisher. No brokers disables it.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
	BufferSize        int
}

// DocumentConfig bounds uploads.
type DocumentConfig struct {
	MaxBytes int64
}

// JobsConfig configures background jobs.
type JobsConfig struct {
	StatusGaugeSchedule string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
func FromEnv() Server {
	_ = godotenv.Load()

	return Server{
		Addr:          envString("LOANFLOW_ADDR", defaultAddr),
		LogLevel:      envString("LOG_LEVEL", "info"),
		JWTSigningKey: envString("JWT_SIGNING_KEY", defaultJWTSigningKey),
		JWTIssuer:     envString("JWT_ISSUER", defaultJWTIssuer),
		TokenTTL:      envDuration("TOKEN_TTL", defaultTokenTTL),
		SeedStaff:     envBool("SEED_STAFF", true),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			UnreadTTL:    envDuration("REDIS_UNREAD_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           envList("KAFKA_BROKERS"),
			Topic:             envString("KAFKA_TOPIC", defaultKafkaTopic),
			Partitions:        int32(envInt("KAFKA_TOPIC_PARTITIONS", 3)),
			ReplicationFactor: int16(envInt("KAFKA_REPLICATION_FACTOR", 1)),
			BufferSize:        envInt("KAFKA_BUFFER_SIZE", 256),
		},
		Document: DocumentConfig{
			MaxBytes: int64(envInt("MAX_DOCUMENT_BYTES", defaultMaxDocumentBytes)),
		},
		Jobs: JobsConfig{
			StatusGaugeSchedule: envString("STATUS_GAUGE_SCHEDULE", defaultGaugeSchedule),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
