// Package intel derives supplier comparisons, price statistics, kits and
// dashboard figures. All cost arithmetic is delegated to package landed.
package intel

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/store"
)

// Repository is the read-only store surface the intel service needs.
type Repository interface {
	GetItem(ctx context.Context, id int64) (store.CatalogItem, error)
	ListItems(ctx context.Context, category string) ([]store.CatalogItem, error)
	ListPrices(ctx context.Context, itemID int64) ([]store.Price, error)
	LatestPrices(ctx context.Context, itemID int64) ([]store.SupplierItemPrice, error)
	Count(ctx context.Context, table string) (int, error)
	SumSnapshotLanded(ctx context.Context) (decimal.Decimal, int, error)
}

// Service answers catalog and supplier questions across stored prices.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService returns a Service over repo. A nil logger discards output.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("intel")}
}

// Comparison is the ranked supplier table for one item.
type Comparison struct {
	Item     store.CatalogItem           `json:"item"`
	Quantity int64                       `json:"quantity"`
	Config   landed.CostConfig           `json:"config"`
	Rows     []landed.SupplierComparison `json:"rows"`
}

// CompareItem prices quantity units of an item once per supplier using each
// supplier's latest price.
func (s *Service) CompareItem(ctx context.Context, itemID, quantity int64, cfg landed.CostConfig) (Comparison, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return Comparison{}, fmt.Errorf("load item %d: %w", itemID, err)
	}
	latest, err := s.repo.LatestPrices(ctx, itemID)
	if err != nil {
		return Comparison{}, fmt.Errorf("load item %d prices: %w", itemID, err)
	}

	prices := make([]landed.SupplierPrice, 0, len(latest))
	for _, p := range latest {
		price := p.PriceFobUSD
		prices = append(prices, landed.SupplierPrice{
			SupplierID:   p.SupplierID,
			SupplierName: p.SupplierName,
			Active:       p.Active,
			PriceFobUSD:  &price,
		})
	}

	rows := landed.CompareSuppliers(landed.ItemSpec{UnitCBM: item.UnitCBM, UnitWeightKg: item.UnitWeightKg}, quantity, cfg, prices)
	s.logger.Debug("compared suppliers",
		zap.Int64("item_id", itemID),
		zap.Int("candidates", len(latest)),
		zap.Int("rows", len(rows)))

	return Comparison{Item: item, Quantity: quantity, Config: cfg, Rows: rows}, nil
}

// PriceStats summarizes the FOB price history of an item.
type PriceStats struct {
	ItemID    int64           `json:"item_id"`
	Count     int             `json:"count"`
	Suppliers int             `json:"suppliers"`
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
	Mean      decimal.Decimal `json:"mean"`
	Latest    decimal.Decimal `json:"latest"`
}

func (s *Service) PriceStats(ctx context.Context, itemID int64) (PriceStats, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return PriceStats{}, fmt.Errorf("load item %d: %w", itemID, err)
	}
	prices, err := s.repo.ListPrices(ctx, itemID)
	if err != nil {
		return PriceStats{}, fmt.Errorf("load item %d prices: %w", itemID, err)
	}
	return summarize(itemID, prices), nil
}

// summarize expects prices newest first.
func summarize(itemID int64, prices []store.Price) PriceStats {
	stats := PriceStats{ItemID: itemID, Count: len(prices)}
	if len(prices) == 0 {
		return stats
	}

	suppliers := make(map[int64]struct{})
	sum := decimal.Zero
	stats.Min = prices[0].PriceFobUSD
	stats.Max = prices[0].PriceFobUSD
	stats.Latest = prices[0].PriceFobUSD
	for _, p := range prices {
		suppliers[p.SupplierID] = struct{}{}
		sum = sum.Add(p.PriceFobUSD)
		stats.Min = decimal.Min(stats.Min, p.PriceFobUSD)
		stats.Max = decimal.Max(stats.Max, p.PriceFobUSD)
	}
	stats.Suppliers = len(suppliers)
	stats.Mean = sum.Div(decimal.NewFromInt(int64(len(prices))))
	return stats
}

// Dashboard holds headline counts for the home screen.
type Dashboard struct {
	Clients      int             `json:"clients"`
	Suppliers    int             `json:"suppliers"`
	Items        int             `json:"items"`
	Quotes       int             `json:"quotes"`
	PricedQuotes int             `json:"priced_quotes"`
	TotalLanded  decimal.Decimal `json:"total_landed"`
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	for table, dst := range map[string]*int{
		"clients":       &d.Clients,
		"suppliers":     &d.Suppliers,
		"catalog_items": &d.Items,
		"quotes":        &d.Quotes,
	} {
		n, err := s.repo.Count(ctx, table)
		if err != nil {
			return Dashboard{}, err
		}
		*dst = n
	}

	total, priced, err := s.repo.SumSnapshotLanded(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("sum quote snapshots: %w", err)
	}
	d.TotalLanded = total
	d.PricedQuotes = priced
	return d, nil
}
