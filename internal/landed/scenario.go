package landed

import "github.com/shopspring/decimal"

// Scenario names a fixed set of cost multipliers.
type Scenario string

const (
	ScenarioBase        Scenario = "base"
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioModerate    Scenario = "moderate"
	ScenarioPessimistic Scenario = "pessimistic"
)

// Multipliers scale the three cost drivers of a shipment.
type Multipliers struct {
	Freight   decimal.Decimal `json:"freight"`
	Insurance decimal.Decimal `json:"insurance"`
	Fob       decimal.Decimal `json:"fob"`
}

// ScenarioResult pairs a named scenario with its recomputed breakdown.
type ScenarioResult struct {
	Name        Scenario      `json:"name"`
	Multipliers Multipliers   `json:"multipliers"`
	Breakdown   CostBreakdown `json:"breakdown"`
}

func mult(freight, insurance, fob string) Multipliers {
	return Multipliers{
		Freight:   decimal.RequireFromString(freight),
		Insurance: decimal.RequireFromString(insurance),
		Fob:       decimal.RequireFromString(fob),
	}
}

// moderate and base are equal on purpose; both stay addressable by name.
var presets = map[Scenario]Multipliers{
	ScenarioBase:        mult("1", "1", "1"),
	ScenarioOptimistic:  mult("0.8", "0.95", "0.95"),
	ScenarioModerate:    mult("1", "1", "1"),
	ScenarioPessimistic: mult("1.2", "1.05", "1.1"),
}

// Scenarios returns the preset names in presentation order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioBase, ScenarioOptimistic, ScenarioModerate, ScenarioPessimistic}
}

// Preset returns the multipliers of a named scenario.
func Preset(name Scenario) (Multipliers, bool) {
	m, ok := presets[name]
	return m, ok
}

// Simulate recomputes the pipeline with freight per container, insurance
// rate and total FOB scaled by m. Volume is never scaled, so the container
// quantity matches the unperturbed order.
func Simulate(lines []LineInput, cfg CostConfig, m Multipliers) CostBreakdown {
	totals := Aggregate(lines)
	qty := ContainerQty(totals.TotalCBM, cfg.ContainerType, cfg.ContainerQtyOverride)
	totals.TotalFob = totals.TotalFob.Mul(m.Fob)
	return build(totals, qty, cfg.FreightPerContainerUSD.Mul(m.Freight), cfg.InsuranceRate.Mul(m.Insurance), cfg)
}

// SimulateAll runs the requested presets, or all of them when names is
// empty. Unknown names are skipped.
func SimulateAll(lines []LineInput, cfg CostConfig, names ...Scenario) []ScenarioResult {
	if len(names) == 0 {
		names = Scenarios()
	}
	results := make([]ScenarioResult, 0, len(names))
	for _, name := range names {
		m, ok := Preset(name)
		if !ok {
			continue
		}
		results = append(results, ScenarioResult{
			Name:        name,
			Multipliers: m,
			Breakdown:   Simulate(lines, cfg, m),
		})
	}
	return results
}
