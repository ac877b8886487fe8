// Package landed converts FOB order lines into container requirements,
// freight, insurance, CIF and destination landed cost.
//
// Every function is pure and safe for concurrent use. Lookups over
// container types and destinations are total: unknown keys resolve to a
// documented default instead of failing, so a cost estimate is never
// blocked by stale reference data.
package landed

import "github.com/shopspring/decimal"

// CostConfig carries the shipment parameters shared by every line.
type CostConfig struct {
	ContainerType          ContainerType   `json:"container_type"`
	ContainerQtyOverride   *int64          `json:"container_qty_override,omitempty"`
	FreightPerContainerUSD decimal.Decimal `json:"freight_per_container_usd"`
	InsuranceRate          decimal.Decimal `json:"insurance_rate"`
	FixedCostsUSD          decimal.Decimal `json:"fixed_costs_usd"`
	Destination            Destination     `json:"destination"`
}

// CostBreakdown is the full result of the cost pipeline.
type CostBreakdown struct {
	TotalFob            decimal.Decimal `json:"total_fob"`
	TotalCBM            decimal.Decimal `json:"total_cbm"`
	TotalWeight         decimal.Decimal `json:"total_weight"`
	ContainerQty        int64           `json:"container_qty"`
	FreightTotal        decimal.Decimal `json:"freight_total"`
	InsuranceTotal      decimal.Decimal `json:"insurance_total"`
	CIFTotal            decimal.Decimal `json:"cif_total"`
	LandedByDestination LandedSet       `json:"landed_by_destination"`
	// Landed is the standard-regime figure for the configured destination.
	Landed decimal.Decimal `json:"landed"`
}

// Compute runs lines through container sizing, CIF and landed cost.
func Compute(lines []LineInput, cfg CostConfig) CostBreakdown {
	totals := Aggregate(lines)
	qty := ContainerQty(totals.TotalCBM, cfg.ContainerType, cfg.ContainerQtyOverride)
	return build(totals, qty, cfg.FreightPerContainerUSD, cfg.InsuranceRate, cfg)
}

func build(totals Totals, containerQty int64, freightPerContainer, insuranceRate decimal.Decimal, cfg CostConfig) CostBreakdown {
	cif := ComputeCIF(totals.TotalFob, containerQty, freightPerContainer, insuranceRate)
	return CostBreakdown{
		TotalFob:            totals.TotalFob,
		TotalCBM:            totals.TotalCBM,
		TotalWeight:         totals.TotalWeight,
		ContainerQty:        containerQty,
		FreightTotal:        cif.FreightTotal,
		InsuranceTotal:      cif.InsuranceTotal,
		CIFTotal:            cif.CIFTotal,
		LandedByDestination: ComputeAllLanded(cif.CIFTotal, cfg.FixedCostsUSD),
		Landed:              ComputeLanded(cif.CIFTotal, cfg.Destination, cfg.FixedCostsUSD),
	}
}
