package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/importhub/internal/landed"
)

const (
	envDev = "dev"

	// generatedSecretBytes is the size of the random dev session secret.
	generatedSecretBytes = 32
)

// ErrMissingSecret is returned by Load when SESSION_SECRET is empty outside
// the dev environment.
var ErrMissingSecret = errors.New("SESSION_SECRET is required outside dev")

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string        `envconfig:"APP_ENV" default:"dev"`
	AdminEmail    string        `envconfig:"ADMIN_EMAIL"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`
	SessionSecret string        `envconfig:"SESSION_SECRET"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	DBPath        string        `envconfig:"DB_PATH" default:"./dev.db"`
	Port          string        `envconfig:"PORT" default:"8080"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	Costs         CostDefaults

	generatedSecret bool
}

// CostDefaults seed new quotes and intel requests that omit cost settings.
type CostDefaults struct {
	ContainerType          landed.ContainerType `envconfig:"DEFAULT_CONTAINER_TYPE" default:"40HC"`
	FreightPerContainerUSD decimal.Decimal      `envconfig:"DEFAULT_FREIGHT_PER_CONTAINER_USD" default:"3500"`
	InsuranceRate          decimal.Decimal      `envconfig:"DEFAULT_INSURANCE_RATE" default:"0.005"`
	FixedCostsUSD          decimal.Decimal      `envconfig:"DEFAULT_FIXED_COSTS_USD" default:"500"`
	Destination            landed.Destination   `envconfig:"DEFAULT_DESTINATION" default:"BR"`
}

// CostConfig converts the defaults into an engine config.
func (c CostDefaults) CostConfig() landed.CostConfig {
	return landed.CostConfig{
		ContainerType:          c.ContainerType,
		FreightPerContainerUSD: c.FreightPerContainerUSD,
		InsuranceRate:          c.InsuranceRate,
		FixedCostsUSD:          c.FixedCostsUSD,
		Destination:            c.Destination,
	}
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (Config, error) {
	// Best-effort: production injects real environment variables.
	if _, err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.ensureSecret(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ensureSecret fills an empty SessionSecret with random bytes in dev and
// rejects it in every other environment.
func (c *Config) ensureSecret() error {
	if c.SessionSecret != "" {
		return nil
	}
	if !c.IsDev() {
		return ErrMissingSecret
	}

	buf := make([]byte, generatedSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}
	c.SessionSecret = hex.EncodeToString(buf)
	c.generatedSecret = true
	return nil
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == envDev
}

// Warnings lists settings that are missing but not fatal.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	switch {
	case c.generatedSecret:
		warnings = append(warnings, "SESSION_SECRET is not set, using a random secret; tokens expire on restart")
	case c.SessionSecret == "":
		warnings = append(warnings, "SESSION_SECRET is not set")
	}
	if !c.Costs.ContainerType.Known() {
		warnings = append(warnings, fmt.Sprintf("DEFAULT_CONTAINER_TYPE %q is unknown, 40HC capacity applies", c.Costs.ContainerType))
	}
	if !c.Costs.Destination.Known() {
		warnings = append(warnings, fmt.Sprintf("DEFAULT_DESTINATION %q is unknown, BR duty applies", c.Costs.Destination))
	}
	return warnings
}
