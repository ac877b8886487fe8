package landed

import "github.com/shopspring/decimal"

// ContainerQty returns how many containers of type t are needed to ship
// totalCBM. A positive override always wins. The result is never below 1:
// an order with no volume still ships in one container.
func ContainerQty(totalCBM decimal.Decimal, t ContainerType, override *int64) int64 {
	if override != nil && *override >= 1 {
		return *override
	}

	q, r := totalCBM.QuoRem(CapacityCBM(t), 0)
	qty := q.IntPart()
	if r.Sign() > 0 {
		qty++
	}
	if qty < 1 {
		return 1
	}
	return qty
}
