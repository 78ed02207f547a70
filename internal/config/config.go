package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Broker      BrokerConfig
	Gateway     GatewayConfig
	Auth        AuthConfig
	Tagging     TaggingConfig
	Email       EmailConfig
	Clock       ClockConfig
	Outbox      OutboxConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

type BrokerConfig struct {
	URL string
	// Prefetch bounds the number of unacked deliveries per consumer.
	Prefetch int
	// MaxRedeliveries is how often a failed message is retried before it
	// is routed to the dead-letter queue.
	MaxRedeliveries int
	ReconnectDelay  time.Duration
}

type GatewayConfig struct {
	Token string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

type TaggingConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	// MinConfidence is the tag confidence cutoff used by the scoring engine.
	MinConfidence float64
}

type EmailConfig struct {
	Enabled      bool
	ResendAPIKey string
	From         string
	SenderName   string
}

type ClockConfig struct {
	SweepInterval time.Duration
}

type OutboxConfig struct {
	RelayInterval time.Duration
	BatchSize     int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads service configuration from the environment. Every service in
// the deployment shares this shape; values a service does not use (for
// example the tagging credentials outside the score service) may stay empty.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Broker: BrokerConfig{
			URL:             getEnv("BROKER_URL", "amqp://localhost"),
			Prefetch:        getEnvInt("BROKER_PREFETCH", 1),
			MaxRedeliveries: getEnvInt("BROKER_MAX_REDELIVERIES", 5),
			ReconnectDelay:  getEnvDuration("BROKER_RECONNECT_DELAY", 5*time.Second),
		},
		Gateway: GatewayConfig{
			Token: getEnv("GATEWAY_TOKEN", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Tagging: TaggingConfig{
			BaseURL:       getEnv("TAGGING_BASE_URL", "https://api.imagga.com"),
			APIKey:        getEnv("TAGGING_API_KEY", ""),
			APISecret:     getEnv("TAGGING_API_SECRET", ""),
			Timeout:       getEnvDuration("TAGGING_TIMEOUT", 10*time.Second),
			MinConfidence: 30,
		},
		Email: EmailConfig{
			Enabled:      getEnv("EMAIL_ENABLED", "false") == "true",
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", ""),
			SenderName:   getEnv("EMAIL_SENDER_NAME", "Photo Prestiges"),
		},
		Clock: ClockConfig{
			SweepInterval: getEnvDuration("CLOCK_SWEEP_INTERVAL", 5*time.Minute),
		},
		Outbox: OutboxConfig{
			RelayInterval: getEnvDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
			BatchSize:     getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Gateway.Token == "" {
		return Config{}, fmt.Errorf("GATEWAY_TOKEN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
