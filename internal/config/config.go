package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Real-time scheduler configuration
	Realtime RealtimeConfig

	// Data store configuration
	Store StoreConfig

	// Prediction backend configuration
	Prediction PredictionConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
}

// RealtimeConfig holds the broadcast scheduler and reaper knobs
type RealtimeConfig struct {
	// TickInterval is the fine-grained broadcast period
	TickInterval time.Duration
	// DashboardEvery pushes the coarse dashboard snapshot every Nth tick
	DashboardEvery int
	// FetchTimeout bounds all snapshot fetches within one tick
	FetchTimeout time.Duration
	// ReaperInterval is the liveness sweep period
	ReaperInterval time.Duration
	// SessionIdleTimeout is the inactivity threshold before eviction
	SessionIdleTimeout time.Duration
}

// StoreConfig holds mock data store configuration
type StoreConfig struct {
	// FixturesPath overrides the embedded seed fixtures when set
	FixturesPath string
}

// PredictionConfig holds prediction backend configuration
type PredictionConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: getDurationOrDefault("JWT_ACCESS_TOKEN_TTL", 1*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
			SendBufferSize:  getIntOrDefault("WS_SEND_BUFFER_SIZE", 256),
		},
		Realtime: RealtimeConfig{
			TickInterval:       getDurationOrDefault("REALTIME_TICK", 5*time.Second),
			DashboardEvery:     getIntOrDefault("REALTIME_DASHBOARD_EVERY", 3),
			FetchTimeout:       getDurationOrDefault("REALTIME_FETCH_TIMEOUT", 3*time.Second),
			ReaperInterval:     getDurationOrDefault("REAPER_INTERVAL", 60*time.Second),
			SessionIdleTimeout: getDurationOrDefault("SESSION_IDLE_TIMEOUT", 15*time.Minute),
		},
		Store: StoreConfig{
			FixturesPath: os.Getenv("STORE_FIXTURES"),
		},
		Prediction: PredictionConfig{
			Endpoint: getEnvOrDefault("PREDICTION_ENDPOINT", "http://localhost:9000/predict"),
			Timeout:  getDurationOrDefault("PREDICTION_TIMEOUT", 3*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "logistics-ops"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	// Security validations
	if c.App.Environment == "production" {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Realtime.TickInterval <= 0 {
		errs = append(errs, "REALTIME_TICK must be positive")
	}

	if c.Realtime.FetchTimeout >= c.Realtime.TickInterval {
		errs = append(errs, "REALTIME_FETCH_TIMEOUT must be shorter than REALTIME_TICK")
	}

	if c.Realtime.SessionIdleTimeout <= c.Realtime.ReaperInterval {
		errs = append(errs, "SESSION_IDLE_TIMEOUT must be longer than REAPER_INTERVAL")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, JWT: [REDACTED], Tick: %s, Prediction: %s, Environment: %s}",
		c.Server.Port,
		c.Realtime.TickInterval,
		c.Prediction.Endpoint,
		c.App.Environment,
	)
}
