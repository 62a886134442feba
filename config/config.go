package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Google   GoogleConfig
	Booking  BookingConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/meet?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// JWTConfig holds JWT signing and validation settings for host tokens.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// GoogleConfig configures meeting provisioning through Google Calendar.
type GoogleConfig struct {
	ServiceAccountFile string // path to the service account JSON; empty disables the provider
	CalendarID         string
	MeetDomain         string
	CalendarEndpoint   string // override for tests and proxies
	HTTPTimeoutSec     int
	StrictAuth         bool // fail the booking instead of using a placeholder link
	StrictProvider     bool
	StrictUnexpected   bool
}

// HTTPTimeout returns the provider request timeout.
func (g GoogleConfig) HTTPTimeout() time.Duration {
	return time.Duration(g.HTTPTimeoutSec) * time.Second
}

// BookingConfig holds the slot window and booking rate limit.
type BookingConfig struct {
	WindowStart     string // "HH:MM"
	WindowEnd       string
	SlotMinutes     int
	RateLimitPerMin int
	RateLimitBurst  int
}

// EmailConfig for SendGrid.
type EmailConfig struct {
	FromAddress  string
	FromName     string
	SendGridKey  string
	SendGridHost string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "meet"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Google: GoogleConfig{
			ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
			CalendarID:         getEnv("GOOGLE_CALENDAR_ID", "primary"),
			MeetDomain:         getEnv("MEET_DOMAIN", "google.com"),
			CalendarEndpoint:   getEnv("GOOGLE_CALENDAR_ENDPOINT", ""),
			HTTPTimeoutSec:     getEnvInt("GOOGLE_HTTP_TIMEOUT_SEC", 30),
			StrictAuth:         getEnvBool("MEET_STRICT_AUTH", false),
			StrictProvider:     getEnvBool("MEET_STRICT_PROVIDER", false),
			StrictUnexpected:   getEnvBool("MEET_STRICT_UNEXPECTED", false),
		},
		Booking: BookingConfig{
			WindowStart:     getEnv("BOOKING_WINDOW_START", "09:00"),
			WindowEnd:       getEnv("BOOKING_WINDOW_END", "17:00"),
			SlotMinutes:     getEnvInt("BOOKING_SLOT_MINUTES", 30),
			RateLimitPerMin: getEnvInt("BOOKING_RATE_LIMIT_PER_MIN", 20),
			RateLimitBurst:  getEnvInt("BOOKING_RATE_LIMIT_BURST", 5),
		},
		Email: EmailConfig{
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Aura Meet"),
			SendGridKey:  getEnv("SENDGRID_API_KEY", ""),
			SendGridHost: getEnv("SENDGRID_HOST", ""),
		},
	}
	if cfg.Booking.SlotMinutes <= 0 {
		return nil, fmt.Errorf("BOOKING_SLOT_MINUTES must be positive, got %d", cfg.Booking.SlotMinutes)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
