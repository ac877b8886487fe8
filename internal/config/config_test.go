package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/importhub/internal/landed"
)

func TestFromEnv_Defaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "TOKEN_TTL", "SESSION_SECRET",
		"DEFAULT_CONTAINER_TYPE", "DEFAULT_FREIGHT_PER_CONTAINER_USD", "DEFAULT_INSURANCE_RATE",
		"DEFAULT_FIXED_COSTS_USD", "DEFAULT_DESTINATION")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, landed.Container40HC, cfg.Costs.ContainerType)
	assert.Equal(t, landed.DestinationBR, cfg.Costs.Destination)
	assert.Equal(t, "0.005", cfg.Costs.InsuranceRate.String())
	assert.Equal(t, "3500", cfg.Costs.FreightPerContainerUSD.String())

	assert.Len(t, cfg.SessionSecret, 2*generatedSecretBytes)
	assert.Contains(t, cfg.Warnings(), "SESSION_SECRET is not set, using a random secret; tokens expire on restart")
}

// unsetEnv removes keys for the duration of the test; an empty value would
// suppress envconfig defaults.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	unsetEnv(t, "DEFAULT_FREIGHT_PER_CONTAINER_USD", "DEFAULT_INSURANCE_RATE", "TOKEN_TTL")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "prod-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_CONTAINER_TYPE", "20FT")
	t.Setenv("DEFAULT_FIXED_COSTS_USD", "125.50")
	t.Setenv("DEFAULT_DESTINATION", "AR")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "prod-secret", cfg.SessionSecret)

	cc := cfg.Costs.CostConfig()
	assert.Equal(t, landed.Container20FT, cc.ContainerType)
	assert.Equal(t, landed.DestinationAR, cc.Destination)
	assert.Equal(t, "125.5", cc.FixedCostsUSD.String())
}

func TestFromEnv_RequiresSecretOutsideDev(t *testing.T) {
	unsetEnv(t, "SESSION_SECRET")
	t.Setenv("APP_ENV", "prod")

	_, err := fromEnv()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestWarnings(t *testing.T) {
	cfg := Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "secret",
		Costs:         CostDefaults{ContainerType: "53FT", Destination: landed.DestinationUS},
	}

	warnings := cfg.Warnings()

	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "SESSION_SECRET")
	assert.Contains(t, warnings[1], "53FT")
}
