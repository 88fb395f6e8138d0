// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN; required for server, migrate and seed.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPublicKey is the PEM-encoded public key (RSA or ECDSA) or path to file. Access tokens are issued elsewhere; this service only verifies.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the expected iss claim (e.g. "legal-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim (e.g. "legal-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// DefaultHourlyRate is the hourly billing rate applied to timer-sourced entries. 0 disables billing for them.
	DefaultHourlyRate float64 `mapstructure:"DEFAULT_HOURLY_RATE"`
	// TimerDiscardPolicy selects what happens to an unsaved active timer displaced by a new start: "discard" (default) or "save".
	TimerDiscardPolicy string `mapstructure:"TIMER_DISCARD_POLICY"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure disables TLS on the OTLP exporter connection.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "legal-auth")
	v.SetDefault("JWT_AUDIENCE", "legal-api")
	v.SetDefault("DEFAULT_HOURLY_RATE", 0.0)
	v.SetDefault("TIMER_DISCARD_POLICY", "discard")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if cfg.DefaultHourlyRate < 0 {
		return nil, errors.New("config: DEFAULT_HOURLY_RATE must not be negative")
	}
	switch cfg.TimerDiscardPolicy {
	case "discard", "save":
	default:
		return nil, fmt.Errorf("config: TIMER_DISCARD_POLICY must be \"discard\" or \"save\", got %q", cfg.TimerDiscardPolicy)
	}

	return &cfg, nil
}
