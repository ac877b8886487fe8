package intel

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/store"
)

// KitRequest asks for a product mix that spends roughly BudgetUSD of FOB,
// split across categories in proportion to their weights.
type KitRequest struct {
	BudgetUSD       decimal.Decimal            `json:"budget_usd"`
	CategoryWeights map[string]decimal.Decimal `json:"category_weights"`
	Config          landed.CostConfig          `json:"config"`
}

// KitLine is one item picked for a kit from its cheapest supplier.
type KitLine struct {
	ItemID       int64           `json:"item_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Quantity     int64           `json:"quantity"`
	UnitFobUSD   decimal.Decimal `json:"unit_fob_usd"`
}

// Kit is a generated order with its cost breakdown and scenarios.
type Kit struct {
	BudgetUSD  decimal.Decimal         `json:"budget_usd"`
	UnspentUSD decimal.Decimal         `json:"unspent_usd"`
	Lines      []KitLine               `json:"lines"`
	Breakdown  landed.CostBreakdown    `json:"breakdown"`
	Scenarios  []landed.ScenarioResult `json:"scenarios"`
}

type candidate struct {
	item  store.CatalogItem
	price store.SupplierItemPrice
}

// GenerateKit fills each category's share of the budget with its cheapest
// actively supplied items, splitting the share evenly and honoring MOQ.
// The resulting lines are priced through the landed pipeline.
func (s *Service) GenerateKit(ctx context.Context, req KitRequest) (Kit, error) {
	kit := Kit{BudgetUSD: req.BudgetUSD, UnspentUSD: decimal.Zero, Lines: make([]KitLine, 0)}

	categories := make([]string, 0, len(req.CategoryWeights))
	weightSum := decimal.Zero
	for c, w := range req.CategoryWeights {
		if w.Sign() <= 0 {
			continue
		}
		categories = append(categories, c)
		weightSum = weightSum.Add(w)
	}
	sort.Strings(categories)

	for _, category := range categories {
		allotment := req.BudgetUSD.Mul(req.CategoryWeights[category]).Div(weightSum)
		candidates, err := s.candidates(ctx, category)
		if err != nil {
			return Kit{}, err
		}

		remaining := allotment
		for i, c := range candidates {
			share := remaining.Div(decimal.NewFromInt(int64(len(candidates) - i)))
			qty := share.Div(c.price.PriceFobUSD).Floor().IntPart()
			if qty < c.item.MOQ {
				qty = c.item.MOQ
			}
			cost := c.price.PriceFobUSD.Mul(decimal.NewFromInt(qty))
			if cost.GreaterThan(remaining) {
				continue
			}
			remaining = remaining.Sub(cost)
			kit.Lines = append(kit.Lines, KitLine{
				ItemID:       c.item.ID,
				SKU:          c.item.SKU,
				Name:         c.item.Name,
				Category:     category,
				SupplierID:   c.price.SupplierID,
				SupplierName: c.price.SupplierName,
				Quantity:     qty,
				UnitFobUSD:   c.price.PriceFobUSD,
			})
		}
		kit.UnspentUSD = kit.UnspentUSD.Add(remaining)
	}

	inputs := make([]landed.LineInput, 0, len(kit.Lines))
	for _, l := range kit.Lines {
		item, err := s.repo.GetItem(ctx, l.ItemID)
		if err != nil {
			return Kit{}, fmt.Errorf("load kit item %d: %w", l.ItemID, err)
		}
		inputs = append(inputs, landed.LineInput{
			Quantity:     l.Quantity,
			UnitFobUSD:   l.UnitFobUSD,
			UnitCBM:      item.UnitCBM,
			UnitWeightKg: item.UnitWeightKg,
		})
	}
	kit.Breakdown = landed.Compute(inputs, req.Config)
	kit.Scenarios = landed.SimulateAll(inputs, req.Config, landed.ScenarioOptimistic, landed.ScenarioPessimistic)

	s.logger.Debug("generated kit",
		zap.Int("categories", len(categories)),
		zap.Int("lines", len(kit.Lines)),
		zap.String("unspent_usd", kit.UnspentUSD.StringFixed(2)))
	return kit, nil
}

// candidates returns a category's items that have a positive active price,
// cheapest first.
func (s *Service) candidates(ctx context.Context, category string) ([]candidate, error) {
	items, err := s.repo.ListItems(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list %q items: %w", category, err)
	}

	out := make([]candidate, 0, len(items))
	for _, it := range items {
		prices, err := s.repo.LatestPrices(ctx, it.ID)
		if err != nil {
			return nil, fmt.Errorf("load item %d prices: %w", it.ID, err)
		}
		best, ok := cheapestActive(prices)
		if !ok {
			continue
		}
		out = append(out, candidate{item: it, price: best})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].price.PriceFobUSD.Equal(out[j].price.PriceFobUSD) {
			return out[i].price.PriceFobUSD.LessThan(out[j].price.PriceFobUSD)
		}
		return out[i].item.SKU < out[j].item.SKU
	})
	return out, nil
}

func cheapestActive(prices []store.SupplierItemPrice) (store.SupplierItemPrice, bool) {
	var (
		best  store.SupplierItemPrice
		found bool
	)
	for _, p := range prices {
		if !p.Active || p.PriceFobUSD.Sign() <= 0 {
			continue
		}
		if !found || p.PriceFobUSD.LessThan(best.PriceFobUSD) {
			best, found = p, true
		}
	}
	return best, found
}
