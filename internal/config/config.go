// Package config loads the process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds every setting the API reads at startup. Values are immutable
// after process start.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"tenantly-api"`
	WebAppURL   string `env:"WEB_APP_URL"  envDefault:"http://localhost:3000"`

	Mongo    MongoConfig
	Token    TokenConfig
	Password PasswordConfig
	Consul   ConsulConfig
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"tenantly"`
}

// TokenConfig holds the JWT signing secret and token lifetimes. Lifetimes
// are duration strings of the form <integer><m|h|d>.
type TokenConfig struct {
	Secret                string `env:"JWT_SECRET"`
	AccessTokenExpiresIn  string `env:"JWT_TOKEN_EXPIRES_IN"                 envDefault:"30m"`
	RefreshTokenExpiresIn string `env:"JWT_REFRESH_TOKEN_EXPIRES_IN"         envDefault:"1d"`
	ConfirmationExpiresIn string `env:"ACCOUNT_CONFIRMATION_HASH_EXPIRES_IN" envDefault:"30m"`
}

// PasswordConfig holds the secret hashing parameters.
type PasswordConfig struct {
	Salt       string `env:"PASSWORD_HASH_SALT"`
	Iterations int    `env:"PASSWORD_HASH_NUMBER_OF_ITERATIONS" envDefault:"10000"`
}

// ConsulConfig holds the optional service discovery settings. Registration
// is skipped when the address is empty.
type ConsulConfig struct {
	Address       string `env:"CONSUL_HTTP_ADDR"`
	ServiceAddr   string `env:"SERVICE_ADDR"   envDefault:"localhost"`
	ServicePort   int    `env:"SERVICE_PORT"   envDefault:"8080"`
	CheckInterval string `env:"CONSUL_CHECK_INTERVAL" envDefault:"10s"`
}

// Load parses the configuration from the environment. Missing required
// values abort the process; silent defaults for secrets are worse than a
// failed start.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// Validate checks that every required setting is present.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.Password.Salt == "" {
		return fmt.Errorf("missing PASSWORD_HASH_SALT environment variable")
	}
	if c.Password.Iterations <= 0 {
		return fmt.Errorf("PASSWORD_HASH_NUMBER_OF_ITERATIONS must be positive")
	}

	return nil
}
