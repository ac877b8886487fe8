package landed

import "github.com/shopspring/decimal"

// LineInput is one order line as seen by the engine.
type LineInput struct {
	Quantity     int64           `json:"quantity"`
	UnitFobUSD   decimal.Decimal `json:"unit_fob_usd"`
	UnitCBM      decimal.Decimal `json:"unit_cbm"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
	// FobOverrideUSD replaces UnitFobUSD when set.
	FobOverrideUSD *decimal.Decimal `json:"fob_override_usd,omitempty"`
}

// EffectiveUnitFob returns the unit price used for the line.
func (l LineInput) EffectiveUnitFob() decimal.Decimal {
	if l.FobOverrideUSD != nil {
		return *l.FobOverrideUSD
	}
	return l.UnitFobUSD
}

// FobTotal is quantity times the effective unit price.
func (l LineInput) FobTotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.EffectiveUnitFob())
}

// CBMTotal is the line volume in cubic meters.
func (l LineInput) CBMTotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitCBM)
}

// WeightTotal is the line weight in kilograms.
func (l LineInput) WeightTotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitWeightKg)
}

// Totals are the summed physical and FOB amounts of a set of lines.
type Totals struct {
	TotalFob    decimal.Decimal `json:"total_fob"`
	TotalCBM    decimal.Decimal `json:"total_cbm"`
	TotalWeight decimal.Decimal `json:"total_weight"`
}

// Aggregate sums FOB, volume and weight across lines without rounding.
func Aggregate(lines []LineInput) Totals {
	totals := Totals{
		TotalFob:    decimal.Zero,
		TotalCBM:    decimal.Zero,
		TotalWeight: decimal.Zero,
	}
	for _, line := range lines {
		totals.TotalFob = totals.TotalFob.Add(line.FobTotal())
		totals.TotalCBM = totals.TotalCBM.Add(line.CBMTotal())
		totals.TotalWeight = totals.TotalWeight.Add(line.WeightTotal())
	}
	return totals
}
