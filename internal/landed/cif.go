package landed

import "github.com/shopspring/decimal"

// CIF holds the freight and insurance legs and their sum with FOB.
type CIF struct {
	FreightTotal   decimal.Decimal `json:"freight_total"`
	InsuranceTotal decimal.Decimal `json:"insurance_total"`
	CIFTotal       decimal.Decimal `json:"cif_total"`
}

// ComputeCIF returns freight, insurance and CIF. Insurance is charged on
// FOB plus freight, not on FOB alone.
func ComputeCIF(totalFob decimal.Decimal, containerQty int64, freightPerContainer, insuranceRate decimal.Decimal) CIF {
	freight := decimal.NewFromInt(containerQty).Mul(freightPerContainer)
	insurance := totalFob.Add(freight).Mul(insuranceRate)
	return CIF{
		FreightTotal:   freight,
		InsuranceTotal: insurance,
		CIFTotal:       totalFob.Add(freight).Add(insurance),
	}
}
