// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Source      SourceConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	AWS         AWSConfig
	Snapshot    SnapshotConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	CORSOrigins  []string

	// Requests per second and burst per client address on public routes,
	// and per token subject on admin routes. A zero rate disables the limit.
	PublicRPS   float64
	PublicBurst int
	AdminRPS    float64
	AdminBurst  int
}

type DatabaseConfig struct {
	Driver       string // postgres | sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// SourceConfig describes the upstream marketplace.
type SourceConfig struct {
	Name           string
	APIBaseURL     string
	SiteBaseURL    string
	APIKey         string
	Lang           string
	HTMLLang       string
	States         string
	SubcategoryID  string
	ImageBaseURL   string
	UserAgent      string
	PageSize       int
	RequestTimeout time.Duration

	// HTTP layer retry on 429/502/503/504
	RetryTotal   int
	RetryBackoff time.Duration

	// feature endpoint retry on 429 only, sleep grows linearly per attempt
	FeatureRetries    int
	FeatureRetrySleep time.Duration

	PerAdvertSleep time.Duration
	PerPageSleep   time.Duration
	RequestsPerSec float64
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PageTTL  time.Duration
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type SnapshotConfig struct {
	Enabled  bool
	LocalDir string
}

type LoggingConfig struct {
	Level  string
	Format string // text | json
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"*"}),
			PublicRPS:    getEnvAsFloat("RATE_LIMIT_PUBLIC_RPS", 10),
			PublicBurst:  getEnvAsInt("RATE_LIMIT_PUBLIC_BURST", 20),
			AdminRPS:     getEnvAsFloat("RATE_LIMIT_ADMIN_RPS", 1),
			AdminBurst:   getEnvAsInt("RATE_LIMIT_ADMIN_BURST", 10),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "autoimport"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "autoimport.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		Source: SourceConfig{
			Name:              getEnv("SOURCE_NAME", "999"),
			APIBaseURL:        getEnv("N999_API_BASE", "https://partners-api.999.md"),
			SiteBaseURL:       getEnv("N999_SITE_BASE", "https://999.md"),
			APIKey:            getEnv("N999_API_KEY", ""),
			Lang:              getEnv("N999_LANG", "ru"),
			HTMLLang:          getEnv("N999_HTML_LANG", "ru"),
			States:            getEnv("N999_STATES", "public"),
			SubcategoryID:     getEnv("N999_SUBCATEGORY", "659"),
			ImageBaseURL:      getEnv("N999_IMAGE_BASE", "https://i.simpalsmedia.com/999.md/BoardImages/900x900/"),
			UserAgent:         getEnv("N999_USER_AGENT", "autoimport/1.0"),
			PageSize:          getEnvAsInt("N999_PAGE_SIZE", 25),
			RequestTimeout:    getEnvAsDuration("N999_TIMEOUT", 30*time.Second),
			RetryTotal:        getEnvAsInt("N999_RETRY_TOTAL", 5),
			RetryBackoff:      getEnvAsSeconds("N999_RETRY_BACKOFF", 0.6),
			FeatureRetries:    getEnvAsInt("N999_FEATURE_RETRIES", 5),
			FeatureRetrySleep: getEnvAsSeconds("N999_FEATURE_RETRY_SLEEP", 1.5),
			PerAdvertSleep:    getEnvAsSeconds("N999_PER_ADVERT_SLEEP", 0.4),
			PerPageSleep:      getEnvAsSeconds("N999_PER_PAGE_SLEEP", 1.0),
			RequestsPerSec:    getEnvAsFloat("N999_RPS", 4),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PageTTL:  getEnvAsDuration("REDIS_PAGE_TTL", 6*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "cars.events"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "autoimport-snapshots"),
		},
		Snapshot: SnapshotConfig{
			Enabled:  getEnvAsBool("SNAPSHOT_ENABLED", false),
			LocalDir: getEnv("SNAPSHOT_DIR", "./snapshots"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Source.APIKey == "" && c.Environment == "production" {
		return fmt.Errorf("N999_API_KEY is required in production")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Source.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Source.PageSize)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsSeconds reads fractional seconds, e.g. N999_PER_ADVERT_SLEEP=0.4
func getEnvAsSeconds(key string, defaultSeconds float64) time.Duration {
	secs := getEnvAsFloat(key, defaultSeconds)
	return time.Duration(secs * float64(time.Second))
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
