package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is one supplier quote for a catalog item. PriceOriginal and
// CurrencyOriginal are kept for audit only; cost math uses PriceFobUSD.
type Price struct {
	ID               int64           `json:"id"`
	SupplierID       int64           `json:"supplier_id"`
	CatalogItemID    int64           `json:"catalog_item_id"`
	PriceFobUSD      decimal.Decimal `json:"price_fob_usd"`
	PriceOriginal    decimal.Decimal `json:"price_original"`
	CurrencyOriginal string          `json:"currency_original"`
	ValidFrom        string          `json:"valid_from"`
}

// SupplierItemPrice is the latest price a supplier offers for an item.
type SupplierItemPrice struct {
	SupplierID   int64
	SupplierName string
	Active       bool
	PriceFobUSD  decimal.Decimal
}

// CreatePrice inserts a price. An empty ValidFrom defaults to now; any other
// value is parsed with ParseTimestamp and stored in TimestampLayout.
func (s *Store) CreatePrice(ctx context.Context, p Price) (Price, error) {
	if p.CurrencyOriginal == "" {
		p.CurrencyOriginal = "USD"
		p.PriceOriginal = p.PriceFobUSD
	}
	query := `
		INSERT INTO prices (supplier_id, catalog_item_id, price_fob_usd, price_original, currency_original)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, valid_from
	`
	args := []any{p.SupplierID, p.CatalogItemID, p.PriceFobUSD, p.PriceOriginal, p.CurrencyOriginal}
	if strings.TrimSpace(p.ValidFrom) != "" {
		validFrom, err := normalizeTimestamp(p.ValidFrom)
		if err != nil {
			return Price{}, fmt.Errorf("insert price: %w", err)
		}
		query = `
			INSERT INTO prices (supplier_id, catalog_item_id, price_fob_usd, price_original, currency_original, valid_from)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id, valid_from
		`
		args = append(args, validFrom)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.ValidFrom); err != nil {
		return Price{}, classify("insert price", err)
	}
	return p, nil
}

// ListPrices returns the price history of an item, newest first. An itemID
// of 0 lists every price.
func (s *Store) ListPrices(ctx context.Context, itemID int64) ([]Price, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supplier_id, catalog_item_id, price_fob_usd, price_original, currency_original, valid_from
		FROM prices
		WHERE (? = 0 OR catalog_item_id = ?)
		ORDER BY datetime(valid_from) DESC, id DESC
	`, itemID, itemID)
	if err != nil {
		return nil, classify("query prices", err)
	}
	defer rows.Close()

	prices := make([]Price, 0)
	for rows.Next() {
		var p Price
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.CatalogItemID, &p.PriceFobUSD, &p.PriceOriginal, &p.CurrencyOriginal, &p.ValidFrom); err != nil {
			return nil, classify("scan price", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate prices", err)
	}
	return prices, nil
}

// LatestPrices returns, per supplier, the most recent price for an item
// together with the supplier's active flag.
func (s *Store) LatestPrices(ctx context.Context, itemID int64) ([]SupplierItemPrice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sp.id, sp.name, sp.active, p.price_fob_usd
		FROM prices p
		JOIN suppliers sp ON sp.id = p.supplier_id
		WHERE p.catalog_item_id = ?
			AND p.id = (
				SELECT p2.id
				FROM prices p2
				WHERE p2.catalog_item_id = p.catalog_item_id AND p2.supplier_id = p.supplier_id
				ORDER BY datetime(p2.valid_from) DESC, p2.id DESC
				LIMIT 1
			)
		ORDER BY sp.id
	`, itemID)
	if err != nil {
		return nil, classify("query latest prices", err)
	}
	defer rows.Close()

	prices := make([]SupplierItemPrice, 0)
	for rows.Next() {
		var p SupplierItemPrice
		if err := rows.Scan(&p.SupplierID, &p.SupplierName, &p.Active, &p.PriceFobUSD); err != nil {
			return nil, classify("scan latest price", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate latest prices", err)
	}
	return prices, nil
}

func (s *Store) DeletePrice(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delete price", "prices", id)
}
