package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Tracing  TracingConfig
	Booking  BookingConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Port        string
	Debug       bool
	LogPath     string
	SeedMovies  bool
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// URL renders the connection settings as a URL with the given scheme
// (postgres, pgx5, ...).
func (c DatabaseConfig) URL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type StorageConfig struct {
	Driver string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
	CacheTTL time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type RabbitMQConfig struct {
	URL string
}

type TracingConfig struct {
	Endpoint string
	Insecure bool
}

type BookingConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

type AdminConfig struct {
	Email string
}

// LoadConfig reads the optional .env file and then the process environment.
// Environment variables win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("APP_NAME", "movie-booking")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("SEED_MOVIES", false)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("JWT_EXPIRY_HOURS", 1)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_LOCK_TTL", "5s")
	v.SetDefault("AVAILABILITY_CACHE_TTL", "30s")
	v.SetDefault("BOOKING_MAX_ATTEMPTS", 3)
	v.SetDefault("BOOKING_RETRY_DELAY", "20ms")

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Version:     v.GetString("APP_VERSION"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			SeedMovies:  v.GetBool("SEED_MOVIES"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			LockTTL:  v.GetDuration("REDIS_LOCK_TTL"),
			CacheTTL: v.GetDuration("AVAILABILITY_CACHE_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		Tracing: TracingConfig{
			Endpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
			Insecure: v.GetBool("OTEL_INSECURE"),
		},
		Booking: BookingConfig{
			MaxAttempts: v.GetInt("BOOKING_MAX_ATTEMPTS"),
			RetryDelay:  v.GetDuration("BOOKING_RETRY_DELAY"),
		},
		Admin: AdminConfig{
			Email: strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Name == "" || c.Database.User == "" {
			return errors.New("DB_NAME and DB_USER are required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ExpiryHours < 1 {
		return errors.New("JWT_EXPIRY_HOURS must be at least 1")
	}
	if c.Booking.MaxAttempts < 1 {
		return errors.New("BOOKING_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
