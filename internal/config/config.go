package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MinTickInterval is the finest cadence the cron scheduler supports
const MinTickInterval = time.Second

// ValidateTickInterval rejects cadences cron cannot honour: it runs on
// whole seconds and would silently truncate anything else.
func ValidateTickInterval(d time.Duration) error {
	if d < MinTickInterval {
		return fmt.Errorf("tick interval must be at least %s, got %s", MinTickInterval, d)
	}
	if d%time.Second != 0 {
		return fmt.Errorf("tick interval must be a whole number of seconds, got %s", d)
	}
	return nil
}

// Config is the runtime configuration of the simulation server
type Config struct {
	GRPCAddr     string        `envconfig:"GRPC_ADDR" default:":8080"`
	HTTPAddr     string        `envconfig:"HTTP_ADDR" default:":8081"`
	APIToken     string        `envconfig:"API_TOKEN" default:"dev-token"`
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"3s"`
	Seed         uint64        `envconfig:"SIM_SEED" default:"0"`
	MaxSessions  int           `envconfig:"MAX_SESSIONS" default:"64"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty    bool          `envconfig:"LOG_PRETTY" default:"false"`
}

// Load reads a .env file when present, then the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if err := ValidateTickInterval(c.TickInterval); err != nil {
		return fmt.Errorf("TICK_INTERVAL: %w", err)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}
	if c.APIToken == "" {
		return errors.New("API_TOKEN must not be empty")
	}
	return nil
}
