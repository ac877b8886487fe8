// Package quote resolves stored quotes into engine inputs and prices them.
package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/importhub/internal/landed"
	"github.com/Simplici0/importhub/internal/store"
)

// Price sources recorded on each resolved line.
const (
	SourceOverride   = "override"
	SourceSupplier   = "supplier"
	SourceBestActive = "best_active"
	SourceNone       = "none"
)

// Repository is the subset of the store the quote service reads and writes.
type Repository interface {
	GetQuote(ctx context.Context, id int64) (store.Quote, error)
	ListQuoteLines(ctx context.Context, quoteID int64) ([]store.QuoteLine, error)
	GetItem(ctx context.Context, id int64) (store.CatalogItem, error)
	GetClient(ctx context.Context, id int64) (store.Client, error)
	LatestPrices(ctx context.Context, itemID int64) ([]store.SupplierItemPrice, error)
	SaveQuoteSnapshot(ctx context.Context, quoteID int64, breakdown landed.CostBreakdown) error
}

// Service prices stored quotes.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService returns a Service over repo. A nil logger discards output.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("quote")}
}

// ResolvedLine is a quote line with its catalog data and resolved price.
type ResolvedLine struct {
	store.QuoteLine
	SKU          string           `json:"sku"`
	ItemName     string           `json:"item_name"`
	SupplierName string           `json:"supplier_name,omitempty"`
	PriceSource  string           `json:"price_source"`
	Input        landed.LineInput `json:"input"`
}

// Detail is a quote together with its resolved lines and breakdown.
type Detail struct {
	Quote     store.Quote          `json:"quote"`
	Client    *store.Client        `json:"client,omitempty"`
	Lines     []ResolvedLine       `json:"lines"`
	Breakdown landed.CostBreakdown `json:"breakdown"`
}

// Inputs returns the engine inputs of every resolved line.
func (d Detail) Inputs() []landed.LineInput {
	inputs := make([]landed.LineInput, 0, len(d.Lines))
	for _, l := range d.Lines {
		inputs = append(inputs, l.Input)
	}
	return inputs
}

// Breakdown prices a quote and stores the result as the quote snapshot.
func (s *Service) Breakdown(ctx context.Context, quoteID int64) (landed.CostBreakdown, error) {
	d, err := s.Detail(ctx, quoteID)
	if err != nil {
		return landed.CostBreakdown{}, err
	}
	return d.Breakdown, nil
}

// Detail loads, resolves and prices a quote, then persists the snapshot.
func (s *Service) Detail(ctx context.Context, quoteID int64) (Detail, error) {
	d, err := s.resolve(ctx, quoteID)
	if err != nil {
		return Detail{}, err
	}

	d.Breakdown = landed.Compute(d.Inputs(), d.Quote.Config)

	if err := s.repo.SaveQuoteSnapshot(ctx, quoteID, d.Breakdown); err != nil {
		return Detail{}, fmt.Errorf("save quote %d snapshot: %w", quoteID, err)
	}
	return d, nil
}

// Scenarios prices a quote under the named presets (all when none given).
// Nothing is persisted.
func (s *Service) Scenarios(ctx context.Context, quoteID int64, names ...landed.Scenario) ([]landed.ScenarioResult, error) {
	d, err := s.resolve(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return landed.SimulateAll(d.Inputs(), d.Quote.Config, names...), nil
}

func (s *Service) resolve(ctx context.Context, quoteID int64) (Detail, error) {
	q, err := s.repo.GetQuote(ctx, quoteID)
	if err != nil {
		return Detail{}, fmt.Errorf("load quote %d: %w", quoteID, err)
	}
	d := Detail{Quote: q}

	if q.ClientID != nil {
		c, err := s.repo.GetClient(ctx, *q.ClientID)
		switch {
		case err == nil:
			d.Client = &c
		case !errors.Is(err, store.ErrNotFound):
			return Detail{}, fmt.Errorf("load quote %d client: %w", quoteID, err)
		}
	}

	lines, err := s.repo.ListQuoteLines(ctx, quoteID)
	if err != nil {
		return Detail{}, fmt.Errorf("load quote %d lines: %w", quoteID, err)
	}

	d.Lines = make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		rl, err := s.resolveLine(ctx, line)
		if err != nil {
			return Detail{}, fmt.Errorf("resolve quote %d line %d: %w", quoteID, line.ID, err)
		}
		d.Lines = append(d.Lines, rl)
	}
	return d, nil
}

func (s *Service) resolveLine(ctx context.Context, line store.QuoteLine) (ResolvedLine, error) {
	item, err := s.repo.GetItem(ctx, line.CatalogItemID)
	if err != nil {
		return ResolvedLine{}, err
	}

	rl := ResolvedLine{
		QuoteLine: line,
		SKU:       item.SKU,
		ItemName:  item.Name,
		Input: landed.LineInput{
			Quantity:       line.Quantity,
			UnitFobUSD:     decimal.Zero,
			UnitCBM:        item.UnitCBM,
			UnitWeightKg:   item.UnitWeightKg,
			FobOverrideUSD: line.FobOverrideUSD,
		},
	}

	prices, err := s.repo.LatestPrices(ctx, item.ID)
	if err != nil {
		return ResolvedLine{}, err
	}
	if p, source, ok := pickPrice(prices, line.SupplierID); ok {
		rl.Input.UnitFobUSD = p.PriceFobUSD
		rl.SupplierName = p.SupplierName
		rl.PriceSource = source
	} else {
		rl.PriceSource = SourceNone
	}

	if line.FobOverrideUSD != nil {
		rl.PriceSource = SourceOverride
	} else if rl.PriceSource == SourceNone {
		s.logger.Warn("no price found, pricing line at zero",
			zap.Int64("quote_id", line.QuoteID),
			zap.Int64("line_id", line.ID),
			zap.String("sku", item.SKU))
	}
	return rl, nil
}

// pickPrice prefers the line's own supplier, then the cheapest active one.
func pickPrice(prices []store.SupplierItemPrice, supplierID *int64) (store.SupplierItemPrice, string, bool) {
	if supplierID != nil {
		for _, p := range prices {
			if p.SupplierID == *supplierID {
				return p, SourceSupplier, true
			}
		}
	}

	var (
		best  store.SupplierItemPrice
		found bool
	)
	for _, p := range prices {
		if !p.Active {
			continue
		}
		if !found || p.PriceFobUSD.LessThan(best.PriceFobUSD) {
			best, found = p, true
		}
	}
	if !found {
		return store.SupplierItemPrice{}, "", false
	}
	return best, SourceBestActive, true
}
