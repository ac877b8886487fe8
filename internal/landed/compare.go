package landed

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ItemSpec holds the physical attributes of a catalog item.
type ItemSpec struct {
	UnitCBM      decimal.Decimal
	UnitWeightKg decimal.Decimal
}

// SupplierPrice is a candidate quote for an item. A nil PriceFobUSD means
// the supplier has no price for the item.
type SupplierPrice struct {
	SupplierID   int64
	SupplierName string
	Active       bool
	PriceFobUSD  *decimal.Decimal
}

// SupplierComparison is one ranked row of a supplier comparison.
type SupplierComparison struct {
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	UnitFobUSD   decimal.Decimal `json:"unit_fob_usd"`
	IsBestFob    bool            `json:"is_best_fob"`
	CostBreakdown
}

// CompareSuppliers prices the same item, quantity and config once per
// supplier. Inactive suppliers and suppliers without a price are dropped
// before computing. Rows are sorted by total FOB ascending and every row
// tied with the minimum is flagged best.
func CompareSuppliers(item ItemSpec, quantity int64, cfg CostConfig, prices []SupplierPrice) []SupplierComparison {
	rows := make([]SupplierComparison, 0, len(prices))
	for _, p := range prices {
		if !p.Active || p.PriceFobUSD == nil {
			continue
		}
		line := LineInput{
			Quantity:     quantity,
			UnitFobUSD:   *p.PriceFobUSD,
			UnitCBM:      item.UnitCBM,
			UnitWeightKg: item.UnitWeightKg,
		}
		rows = append(rows, SupplierComparison{
			SupplierID:    p.SupplierID,
			SupplierName:  p.SupplierName,
			UnitFobUSD:    *p.PriceFobUSD,
			CostBreakdown: Compute([]LineInput{line}, cfg),
		})
	}
	if len(rows) == 0 {
		return rows
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalFob.LessThan(rows[j].TotalFob)
	})
	best := rows[0].TotalFob
	for i := range rows {
		rows[i].IsBestFob = rows[i].TotalFob.Equal(best)
	}
	return rows
}
