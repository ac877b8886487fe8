package landed

import "github.com/shopspring/decimal"

// LandedSet is the landed cost of one CIF amount under every duty regime.
type LandedSet struct {
	US           decimal.Decimal `json:"US"`
	ARStandard   decimal.Decimal `json:"AR_standard"`
	ARSimplified decimal.Decimal `json:"AR_simplified"`
	BR           decimal.Decimal `json:"BR"`
}

// ComputeLanded applies the standard duty of destination to cif and adds
// fixed costs.
func ComputeLanded(cif decimal.Decimal, destination Destination, fixedCosts decimal.Decimal) decimal.Decimal {
	return landedAt(cif, DutyRate(destination, RateStandard), fixedCosts)
}

// ComputeAllLanded evaluates every destination against the same CIF,
// including the alternate AR simplified regime.
func ComputeAllLanded(cif, fixedCosts decimal.Decimal) LandedSet {
	return LandedSet{
		US:           landedAt(cif, DutyRate(DestinationUS, RateStandard), fixedCosts),
		ARStandard:   landedAt(cif, DutyRate(DestinationAR, RateStandard), fixedCosts),
		ARSimplified: landedAt(cif, DutyRate(DestinationAR, RateSimplified), fixedCosts),
		BR:           landedAt(cif, DutyRate(DestinationBR, RateStandard), fixedCosts),
	}
}

func landedAt(cif, rate, fixedCosts decimal.Decimal) decimal.Decimal {
	return cif.Mul(decimal.NewFromInt(1).Add(rate)).Add(fixedCosts)
}
