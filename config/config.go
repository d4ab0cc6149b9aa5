package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Elastic   ElasticsearchConfig
	Sync      SyncConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	AppEnv           string
	HTTPPort         string
	DiagnosticErrors bool
	StoreDriver      string
	StoreTimeout     time.Duration
	DefaultTimezone  string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Empty Addr disables Redis; tenant settings are read uncached and locks are process-local.
	TenantCacheTTL time.Duration
	LockTTL        time.Duration
}

type KafkaConfig struct {
	Brokers    []string
	SalesTopic string
	SyncTopic  string
	GroupID    string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	SaleIndex string
}

type SyncConfig struct {
	Concurrency int
}

type SchedulerConfig struct {
	DailySummaryCron string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:           getEnv("APP_ENV", "dev"),
			HTTPPort:         getEnv("HTTP_PORT", ":8083"),
			DiagnosticErrors: getEnvBool("DIAGNOSTIC_ERRORS", false),
			StoreDriver:      getEnv("STORE_DRIVER", StoreDriverPostgres),
			StoreTimeout:     getEnvDuration("STORE_TIMEOUT", 5*time.Second),
			DefaultTimezone:  getEnv("DEFAULT_TIMEZONE", "UTC"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_sales"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			TenantCacheTTL: getEnvDuration("REDIS_TENANT_CACHE_TTL", 5*time.Minute),
			LockTTL:        getEnvDuration("REDIS_LOCK_TTL", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			SalesTopic: getEnv("KAFKA_TOPIC_SALES", "sales.events"),
			SyncTopic:  getEnv("KAFKA_TOPIC_SYNC", "inventory.sync"),
			GroupID:    getEnv("KAFKA_GROUP_SYNC", "sales-sync"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			SaleIndex: getEnv("ELASTICSEARCH_SALE_INDEX", "sales"),
		},
		Sync: SyncConfig{
			Concurrency: getEnvInt("SYNC_CONCURRENCY", 8),
		},
		Scheduler: SchedulerConfig{
			DailySummaryCron: getEnv("DAILY_SUMMARY_CRON", "5 0 * * *"),
		},
	}
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

// ShowErrorDetail reports whether internal error detail may reach callers.
func (c *Config) ShowErrorDetail() bool {
	return c.IsDevelopment() || c.Server.DiagnosticErrors
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Server.HTTPPort) == "" {
		return errors.New("HTTP_PORT must be provided")
	}
	switch c.Server.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.Server.StoreDriver)
	}
	if c.Server.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Server.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE %q: %w", c.Server.DefaultTimezone, err)
	}
	if c.Sync.Concurrency < 1 {
		c.Sync.Concurrency = 1
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		if value == "" {
			return nil
		}
		return strings.Split(value, ",")
	}
	return fallback
}
