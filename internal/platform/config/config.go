package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server       Server
	Store        StoreConfig
	Directory    DirectoryConfig
	Registration RegistrationConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	Kafka        KafkaConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string
}

// StoreConfig points at the remote customer-record store (Shopify Admin API).
type StoreConfig struct {
	Domain        string
	AccessToken   string
	APIVersion    string
	RetryBase     time.Duration
	ExtraAttempts int
}

// DirectoryConfig drives the site directory cache.
type DirectoryConfig struct {
	SourceURL    string
	TTL          time.Duration
	FetchTimeout time.Duration
}

// RegistrationConfig holds policy knobs for the reconciliation workflow.
type RegistrationConfig struct {
	RequestTimeout   time.Duration
	ReturnPassword   bool
	GeneratePassword bool
}

// RedisConfig is optional; an empty URL disables directory snapshots.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig is optional; an empty URL keeps the audit trail in memory.
type PostgresConfig struct {
	URL string
}

// KafkaConfig is optional; no brokers means no audit streaming.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

const (
	DefaultAPIVersion   = "2024-10"
	DefaultDirectoryTTL = 300 * time.Second
	MinDirectoryTTL     = 30 * time.Second
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:     envOr("SERVER_ADDR", ":8080"),
			LogLevel: envOr("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Domain:        strings.TrimSpace(os.Getenv("SHOPIFY_STORE_DOMAIN")),
			AccessToken:   strings.TrimSpace(os.Getenv("SHOPIFY_ADMIN_TOKEN")),
			APIVersion:    envOr("SHOPIFY_API_VERSION", DefaultAPIVersion),
			RetryBase:     envDuration("SHOPIFY_RETRY_BASE_DELAY", 400*time.Millisecond),
			ExtraAttempts: envInt("SHOPIFY_EXTRA_ATTEMPTS", 1),
		},
		Directory: DirectoryConfig{
			SourceURL:    strings.TrimSpace(os.Getenv("SITE_DIRECTORY_CSV_URL")),
			TTL:          DirectoryTTL(envInt("SITE_DIRECTORY_TTL_SECONDS", int(DefaultDirectoryTTL/time.Second))),
			FetchTimeout: envDuration("SITE_DIRECTORY_FETCH_TIMEOUT", 10*time.Second),
		},
		Registration: RegistrationConfig{
			RequestTimeout:   envDuration("REGISTER_REQUEST_TIMEOUT", 25*time.Second),
			ReturnPassword:   envBool("REGISTER_RETURN_PASSWORD", true),
			GeneratePassword: envBool("REGISTER_GENERATE_PASSWORD", false),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("AUDIT_KAFKA_TOPIC", "registration-audit"),
		},
	}
}

// Missing lists the environment variables the store client cannot run without.
func (s StoreConfig) Missing() []string {
	var missing []string
	if s.Domain == "" {
		missing = append(missing, "SHOPIFY_STORE_DOMAIN")
	}
	if s.AccessToken == "" {
		missing = append(missing, "SHOPIFY_ADMIN_TOKEN")
	}
	if strings.TrimSpace(s.APIVersion) == "" {
		missing = append(missing, "SHOPIFY_API_VERSION")
	}
	return missing
}

// DirectoryTTL converts a seconds value into a TTL, applying the default for
// non-positive input and the 30 second floor.
func DirectoryTTL(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultDirectoryTTL
	}
	ttl := time.Duration(seconds) * time.Second
	if ttl < MinDirectoryTTL {
		return MinDirectoryTTL
	}
	return ttl
}

func envOr(key, fallback string) string {
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
	if err != nil {
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

// envDuration accepts Go duration strings ("750ms") or bare seconds ("2").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
