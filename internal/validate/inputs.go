package validate

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/importhub/internal/landed"
)

// LineRequest is the wire form of an order line.
type LineRequest struct {
	Quantity       int64            `json:"quantity" validate:"gte=1"`
	UnitFobUSD     decimal.Decimal  `json:"unit_fob_usd" validate:"gte=0"`
	UnitCBM        decimal.Decimal  `json:"unit_cbm" validate:"gte=0"`
	UnitWeightKg   decimal.Decimal  `json:"unit_weight_kg" validate:"gte=0"`
	FobOverrideUSD *decimal.Decimal `json:"fob_override_usd,omitempty" validate:"omitnil,gte=0"`
}

func (r LineRequest) Input() landed.LineInput {
	return landed.LineInput{
		Quantity:       r.Quantity,
		UnitFobUSD:     r.UnitFobUSD,
		UnitCBM:        r.UnitCBM,
		UnitWeightKg:   r.UnitWeightKg,
		FobOverrideUSD: r.FobOverrideUSD,
	}
}

// CostConfigRequest is the wire form of a cost configuration.
type CostConfigRequest struct {
	ContainerType          string          `json:"container_type" validate:"required,container_type"`
	ContainerQtyOverride   *int64          `json:"container_qty_override,omitempty" validate:"omitnil,gte=1"`
	FreightPerContainerUSD decimal.Decimal `json:"freight_per_container_usd" validate:"gte=0"`
	InsuranceRate          decimal.Decimal `json:"insurance_rate" validate:"gte=0,lte=1"`
	FixedCostsUSD          decimal.Decimal `json:"fixed_costs_usd" validate:"gte=0"`
	Destination            string          `json:"destination" validate:"required,destination"`
}

func (r CostConfigRequest) Config() landed.CostConfig {
	return landed.CostConfig{
		ContainerType:          landed.ContainerType(r.ContainerType),
		ContainerQtyOverride:   r.ContainerQtyOverride,
		FreightPerContainerUSD: r.FreightPerContainerUSD,
		InsuranceRate:          r.InsuranceRate,
		FixedCostsUSD:          r.FixedCostsUSD,
		Destination:            landed.Destination(r.Destination),
	}
}

// FromConfig is the inverse of Config, used to fill request defaults.
func FromConfig(c landed.CostConfig) CostConfigRequest {
	return CostConfigRequest{
		ContainerType:          string(c.ContainerType),
		ContainerQtyOverride:   c.ContainerQtyOverride,
		FreightPerContainerUSD: c.FreightPerContainerUSD,
		InsuranceRate:          c.InsuranceRate,
		FixedCostsUSD:          c.FixedCostsUSD,
		Destination:            string(c.Destination),
	}
}

// EstimateRequest prices ad-hoc lines without a stored quote.
type EstimateRequest struct {
	Lines     []LineRequest     `json:"lines" validate:"dive"`
	Config    CostConfigRequest `json:"config"`
	Scenarios []string          `json:"scenarios,omitempty" validate:"dive,scenario"`
}

func (r EstimateRequest) Inputs() []landed.LineInput {
	lines := make([]landed.LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, l.Input())
	}
	return lines
}
