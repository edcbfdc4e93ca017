package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	CatalogBackendPostgres = "postgres"
	CatalogBackendScylla   = "scylla"

	demoAPIKey = "demo_key"
)

type Config struct {
	Environment string

	Server        ServerConfig
	Redis         RedisConfig
	Postgres      PostgresConfig
	Scylla        ScyllaConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	Clickhouse    ClickhouseConfig
	Logging       LoggingConfig
	Session       SessionConfig
	Catalog       CatalogConfig
	SMS           SMSConfig
	Hashing       HashingConfig
	Auth          AuthConfig
}

type ServerConfig struct {
	Port         int
	TLSPort      int
	EnableTLS    bool
	AutoCert     bool
	Domain       string
	CertFile     string
	KeyFile      string
	AutoCertDir  string
	Email        string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ScyllaConfig struct {
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type ElasticsearchConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

type ClickhouseConfig struct {
	URL      string
	Username string
	Password string
	Database string
	Table    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

type CatalogConfig struct {
	Backend  string
	CacheTTL time.Duration
}

type SMSConfig struct {
	APIKey       string
	DefaultPrice decimal.Decimal
	PendingPolls int
}

type HashingConfig struct {
	Argon2MemoryCost  int
	Argon2TimeCost    int
	Argon2Parallelism int
	Pepper            string
}

type AuthConfig struct {
	SeedKey          string
	MaxLoginAttempts int
	LoginWindow      time.Duration
	SignupBalance    decimal.Decimal
}

var (
	current     *Config
	currentOnce sync.Once
)

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: GetEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         GetEnvInt("PORT", 8080),
			TLSPort:      GetEnvInt("TLS_PORT", 8443),
			EnableTLS:    GetEnvBool("ENABLE_TLS", false),
			AutoCert:     GetEnvBool("AUTO_CERT", false),
			Domain:       GetEnv("DOMAIN", "localhost"),
			CertFile:     GetEnv("TLS_CERT_FILE", ""),
			KeyFile:      GetEnv("TLS_KEY_FILE", ""),
			AutoCertDir:  GetEnv("AUTO_CERT_DIR", "./certs"),
			Email:        GetEnv("ACME_EMAIL", ""),
			ReadTimeout:  GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: GetEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  GetEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			CORSOrigins:  GetEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Redis: RedisConfig{
			URL:      GetEnv("REDIS_URL", ""),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
			PoolSize: GetEnvInt("REDIS_POOL_SIZE", 20),
		},
		Postgres: PostgresConfig{
			DSN:             GetEnv("DATABASE_URL", ""),
			MaxOpenConns:    GetEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    GetEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: GetEnvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Scylla: ScyllaConfig{
			Nodes:    GetEnvList("SCYLLA_NODES", nil),
			Keyspace: GetEnv("SCYLLA_KEYSPACE", "storefront"),
			Username: GetEnv("SCYLLA_USERNAME", ""),
			Password: GetEnv("SCYLLA_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers: GetEnvList("KAFKA_BROKERS", nil),
			Topic:   GetEnv("KAFKA_ACTIVITY_TOPIC", "storefront.activity"),
		},
		Elasticsearch: ElasticsearchConfig{
			URL:      GetEnv("ELASTICSEARCH_URL", ""),
			Username: GetEnv("ELASTICSEARCH_USERNAME", ""),
			Password: GetEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:    GetEnv("ELASTICSEARCH_ACTIVITY_INDEX", "storefront-activity"),
		},
		Clickhouse: ClickhouseConfig{
			URL:      GetEnv("CLICKHOUSE_URL", ""),
			Username: GetEnv("CLICKHOUSE_USERNAME", "default"),
			Password: GetEnv("CLICKHOUSE_PASSWORD", ""),
			Database: GetEnv("CLICKHOUSE_DATABASE", "default"),
			Table:    GetEnv("CLICKHOUSE_ACTIVITY_TABLE", "activity_events"),
		},
		Logging: LoggingConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "console"),
		},
		Session: SessionConfig{
			TTL:        GetEnvPositiveDuration("SESSION_TTL", 24*time.Hour),
			CookieName: GetEnv("SESSION_COOKIE_NAME", "session_id"),
		},
		Catalog: CatalogConfig{
			Backend:  strings.ToLower(GetEnv("CATALOG_BACKEND", CatalogBackendPostgres)),
			CacheTTL: GetEnvDuration("CATALOG_CACHE_TTL", time.Hour),
		},
		SMS: SMSConfig{
			APIKey:       GetEnv("SMS_API_KEY", ""),
			DefaultPrice: GetEnvDecimal("SMS_DEFAULT_PRICE", decimal.RequireFromString("0.50")),
			PendingPolls: GetEnvInt("SMS_MOCK_PENDING_POLLS", 0),
		},
		Hashing: HashingConfig{
			Argon2MemoryCost:  GetEnvInt("ARGON2_MEMORY_KB", 64*1024),
			Argon2TimeCost:    GetEnvInt("ARGON2_ITERATIONS", 1),
			Argon2Parallelism: GetEnvInt("ARGON2_PARALLELISM", 2),
			Pepper:            GetEnv("PASSWORD_PEPPER", ""),
		},
		Auth: AuthConfig{
			SeedKey:          GetEnv("SEED_KEY", ""),
			MaxLoginAttempts: GetEnvInt("MAX_LOGIN_ATTEMPTS", 10),
			LoginWindow:      GetEnvPositiveDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
			SignupBalance:    GetEnvDecimal("SIGNUP_BALANCE", decimal.NewFromInt(10)),
		},
	}

	currentOnce.Do(func() { current = cfg })
	return cfg
}

// Get returns the first configuration loaded by the process.
func Get() *Config {
	if current == nil {
		return LoadConfig()
	}
	return current
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// DemoMode reports whether the service should serve static catalog data and
// mock provider responses.
func (c *Config) DemoMode() bool {
	if c.SMS.APIKey == "" || c.SMS.APIKey == demoAPIKey {
		return true
	}
	return !c.RedisConfigured()
}

func (c *Config) RedisConfigured() bool {
	return c.Redis.URL != ""
}

// RelationalConfigured reports whether the selected catalog backend has
// connection settings.
func (c *Config) RelationalConfigured() bool {
	switch c.Catalog.Backend {
	case CatalogBackendScylla:
		return len(c.Scylla.Nodes) > 0
	default:
		return c.Postgres.DSN != ""
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvPositiveDuration is GetEnvDuration for windows that must elapse: zero
// or negative values fall back to the default.
func GetEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if d := GetEnvDuration(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

func GetEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvList splits a comma separated variable, dropping empty entries.
func GetEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
