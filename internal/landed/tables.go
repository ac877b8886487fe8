package landed

import "github.com/shopspring/decimal"

// ContainerType identifies a shipping container size.
type ContainerType string

const (
	Container20FT ContainerType = "20FT"
	Container40FT ContainerType = "40FT"
	Container40HC ContainerType = "40HC"
)

// Destination identifies the import country a landed cost is computed for.
type Destination string

const (
	DestinationUS Destination = "US"
	DestinationAR Destination = "AR"
	DestinationBR Destination = "BR"
)

// RateVariant selects between the duty regimes a destination offers.
type RateVariant string

const (
	RateStandard   RateVariant = "standard"
	RateSimplified RateVariant = "simplified"
)

// Lookup tables are read-only after package init.
var (
	capacityCBM = map[ContainerType]decimal.Decimal{
		Container20FT: decimal.NewFromInt(33),
		Container40FT: decimal.NewFromInt(67),
		Container40HC: decimal.NewFromInt(76),
	}
	fallbackCapacity = capacityCBM[Container40HC]

	dutyRates = map[Destination]dutyRate{
		DestinationUS: {standard: decimal.RequireFromString("0.301")},
		DestinationAR: {standard: decimal.RequireFromString("0.8081"), simplified: decimal.RequireFromString("0.51"), hasSimplified: true},
		DestinationBR: {standard: decimal.RequireFromString("0.668")},
	}
	fallbackDestination = DestinationBR
)

type dutyRate struct {
	standard      decimal.Decimal
	simplified    decimal.Decimal
	hasSimplified bool
}

// ContainerTypes lists the supported container sizes, smallest first.
func ContainerTypes() []ContainerType {
	return []ContainerType{Container20FT, Container40FT, Container40HC}
}

// Destinations lists the supported destination countries.
func Destinations() []Destination {
	return []Destination{DestinationUS, DestinationAR, DestinationBR}
}

// Known reports whether t is one of the supported container types.
func (t ContainerType) Known() bool {
	_, ok := capacityCBM[t]
	return ok
}

// Known reports whether d is one of the supported destinations.
func (d Destination) Known() bool {
	_, ok := dutyRates[d]
	return ok
}

// CapacityCBM returns the usable volume of a container in cubic meters.
// Unrecognized types resolve to the 40HC capacity so stale or foreign data
// still produces an estimate.
func CapacityCBM(t ContainerType) decimal.Decimal {
	if c, ok := capacityCBM[t]; ok {
		return c
	}
	return fallbackCapacity
}

// DutyRate returns the import duty multiplier for a destination.
// Unrecognized destinations resolve to the BR rate. Asking for the
// simplified variant of a destination that has none yields its standard rate.
func DutyRate(d Destination, variant RateVariant) decimal.Decimal {
	r, ok := dutyRates[d]
	if !ok {
		r = dutyRates[fallbackDestination]
	}
	if variant == RateSimplified && r.hasSimplified {
		return r.simplified
	}
	return r.standard
}
