package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                 int    `env:"PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required"`
	RedisURL             string `env:"REDIS_URL,required"`
	JWTSecret            string `env:"JWT_SECRET,required"`
	CodeTTLSeconds       int    `env:"CODE_TTL_SECONDS" envDefault:"600"`
	NonceTTLSeconds      int    `env:"NONCE_TTL_SECONDS" envDefault:"86400"`
	DeliveryGraceSeconds int    `env:"DELIVERY_GRACE_SECONDS" envDefault:"60"`
	CommandRetentionDays int    `env:"COMMAND_RETENTION_DAYS" envDefault:"30"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
}

// CodeTTL is how long a pairing code stays acceptable.
func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.CodeTTLSeconds) * time.Second
}

// NonceTTL bounds replay-protection retention per nonce.
func (c *Config) NonceTTL() time.Duration {
	return time.Duration(c.NonceTTLSeconds) * time.Second
}

// DeliveryGrace is how long a delivered command stays hidden from poll
// before it is re-surfaced as possibly lost.
func (c *Config) DeliveryGrace() time.Duration {
	return time.Duration(c.DeliveryGraceSeconds) * time.Second
}

func (c *Config) CommandRetention() time.Duration {
	return time.Duration(c.CommandRetentionDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
	}
	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
