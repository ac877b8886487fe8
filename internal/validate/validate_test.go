package validate

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/importhub/internal/landed"
)

func decodeEstimate(t *testing.T, raw string) EstimateRequest {
	t.Helper()
	var req EstimateRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return req
}

func TestStruct_AcceptsValidEstimate(t *testing.T) {
	req := decodeEstimate(t, `{
		"lines": [{"quantity": 10, "unit_fob_usd": 500, "unit_cbm": "1.0", "unit_weight_kg": 50}],
		"config": {"container_type": "40FT", "freight_per_container_usd": 3500, "insurance_rate": 0.005, "fixed_costs_usd": 500, "destination": "BR"},
		"scenarios": ["optimistic", "moderate"]
	}`)

	require.NoError(t, New().Struct(req))

	b := landed.Compute(req.Inputs(), req.Config.Config())
	assert.Equal(t, "8542.5", b.CIFTotal.String())
}

func TestStruct_RejectsBadLinesAndEnums(t *testing.T) {
	req := decodeEstimate(t, `{
		"lines": [{"quantity": 0, "unit_fob_usd": -1, "unit_cbm": 1, "unit_weight_kg": 1, "fob_override_usd": -2}],
		"config": {"container_type": "53FT", "container_qty_override": 0, "freight_per_container_usd": 1, "insurance_rate": 1.5, "fixed_costs_usd": 0, "destination": "CL"},
		"scenarios": ["wild"]
	}`)

	err := New().Struct(req)
	require.Error(t, err)

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	for _, key := range []string{
		"lines[0].quantity",
		"lines[0].unit_fob_usd",
		"lines[0].fob_override_usd",
		"config.container_type",
		"config.container_qty_override",
		"config.insurance_rate",
		"config.destination",
		"scenarios[0]",
	} {
		assert.Containsf(t, fields, key, "expected error for %s in %v", key, fields)
	}
	assert.NotContains(t, fields, "lines[0].unit_cbm")
	assert.Contains(t, err.Error(), "config.destination: must be one of")
}

func TestFromConfig_RoundTrip(t *testing.T) {
	override := int64(2)
	cfg := landed.CostConfig{ContainerType: landed.Container20FT, ContainerQtyOverride: &override, Destination: landed.DestinationUS}

	got := FromConfig(cfg).Config()

	assert.Equal(t, cfg, got)
}

func TestStruct_Timestamp(t *testing.T) {
	type priceDate struct {
		ValidFrom string `json:"valid_from" validate:"omitempty,timestamp"`
	}
	v := New()

	for _, ok := range []string{"", "2024-01-01", "2024-01-01 10:00:00", "2024-01-01T10:00:00Z"} {
		assert.NoErrorf(t, v.Struct(priceDate{ValidFrom: ok}), "valid_from %q", ok)
	}

	err := v.Struct(priceDate{ValidFrom: "01/06/2026"})
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields["valid_from"], "must be a date")
}

func TestRegisterFn_PanicsOnBadTag(t *testing.T) {
	assert.Panics(t, func() {
		registerFn("", containerTypeValidator)(validator.New())
	})
}
