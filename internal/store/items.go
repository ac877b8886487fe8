package store

import (
	"context"

	"github.com/shopspring/decimal"
)

type CatalogItem struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	HSCode       string          `json:"hs_code"`
	UnitCBM      decimal.Decimal `json:"unit_cbm"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
	MOQ          int64           `json:"moq"`
}

const itemColumns = `id, sku, name, category, hs_code, unit_cbm, unit_weight_kg, moq`

func scanItem(sc interface{ Scan(...any) error }) (CatalogItem, error) {
	var it CatalogItem
	err := sc.Scan(&it.ID, &it.SKU, &it.Name, &it.Category, &it.HSCode, &it.UnitCBM, &it.UnitWeightKg, &it.MOQ)
	return it, err
}

func (s *Store) CreateItem(ctx context.Context, it CatalogItem) (CatalogItem, error) {
	if it.MOQ < 1 {
		it.MOQ = 1
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO catalog_items (sku, name, category, hs_code, unit_cbm, unit_weight_kg, moq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, it.SKU, it.Name, it.Category, it.HSCode, it.UnitCBM, it.UnitWeightKg, it.MOQ).Scan(&it.ID)
	if err != nil {
		return CatalogItem{}, classify("insert catalog item", err)
	}
	return it, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (CatalogItem, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = ?`, id))
	if err != nil {
		return CatalogItem{}, classify("query catalog item", err)
	}
	return it, nil
}

func (s *Store) GetItemBySKU(ctx context.Context, sku string) (CatalogItem, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE sku = ?`, sku))
	if err != nil {
		return CatalogItem{}, classify("query catalog item by sku", err)
	}
	return it, nil
}

// ListItems returns catalog items, optionally restricted to one category.
func (s *Store) ListItems(ctx context.Context, category string) ([]CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items
		WHERE (? = '' OR category = ?)
		ORDER BY sku
	`, category, category)
	if err != nil {
		return nil, classify("query catalog items", err)
	}
	defer rows.Close()

	items := make([]CatalogItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify("scan catalog item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate catalog items", err)
	}
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, it CatalogItem) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET
			sku = ?,
			name = ?,
			category = ?,
			hs_code = ?,
			unit_cbm = ?,
			unit_weight_kg = ?,
			moq = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, it.SKU, it.Name, it.Category, it.HSCode, it.UnitCBM, it.UnitWeightKg, it.MOQ, it.ID)
	if err != nil {
		return classify("update catalog item", err)
	}
	return affectedOne("update catalog item", result)
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delete catalog item", "catalog_items", id)
}
